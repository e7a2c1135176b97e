package identity

import (
	"context"
	"fmt"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/prepdeck/examprep-service/internal/config"
)

// CasdoorGateway verifies Casdoor-issued JWTs and maps their claims to the
// service's user shape.
type CasdoorGateway struct {
	client *casdoorsdk.Client
}

func NewCasdoorGateway(cfg *config.Config) *CasdoorGateway {
	client := casdoorsdk.NewClient(
		cfg.CasdoorEndpoint,
		cfg.CasdoorClientID,
		cfg.CasdoorClientSecret,
		cfg.CasdoorCertificate,
		cfg.CasdoorOrganization,
		cfg.CasdoorApplication,
	)
	return &CasdoorGateway{client: client}
}

func (g *CasdoorGateway) UserFromToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := g.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to parse identity token: %w", err)
	}

	return &User{
		ID:          claims.User.Id,
		DisplayName: claims.User.DisplayName,
		Email:       claims.User.Email,
		AvatarURL:   claims.User.Avatar,
	}, nil
}

// StaticGateway resolves every token to a fixed user. Test helper.
type StaticGateway struct {
	User *User
}

func (g *StaticGateway) UserFromToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, nil
	}
	return g.User, nil
}
