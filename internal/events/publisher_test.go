package events

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopPublisherDropsEvents(t *testing.T) {
	var p NoopEventPublisher
	err := p.PublishAttemptEvent(context.Background(), NewAttemptEvent(EventAttemptStarted, nil))
	assert.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestMockPublisherIsConcurrencySafe(t *testing.T) {
	m := NewMockEventPublisher(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			event := NewAttemptEvent(EventAttemptCompleted, AttemptCompletedEvent{AttemptID: "a1"})
			assert.NoError(t, m.PublishAttemptEvent(context.Background(), event))
		}()
	}
	wg.Wait()

	assert.Len(t, m.GetPublishedEvents(), 16)

	m.ClearEvents()
	assert.Empty(t, m.GetPublishedEvents())
}
