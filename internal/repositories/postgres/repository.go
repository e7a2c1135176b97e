package postgres

import (
	"gorm.io/gorm"

	"github.com/prepdeck/examprep-service/internal/repositories"
)

type postgresRepository struct {
	test   repositories.TestRepository
	result repositories.ResultRepository
	user   repositories.UserRepository
}

// NewRepository wires the gorm-backed persistence gateway.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &postgresRepository{
		test:   NewTestPostgreSQL(db),
		result: NewResultPostgreSQL(db),
		user:   NewUserPostgreSQL(db),
	}
}

func (r *postgresRepository) Test() repositories.TestRepository {
	return r.test
}

func (r *postgresRepository) Result() repositories.ResultRepository {
	return r.result
}

func (r *postgresRepository) User() repositories.UserRepository {
	return r.user
}
