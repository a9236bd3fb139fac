package usersvc

import (
	"context"

	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iuserrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	userrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/user/postgres"
	"github.com/corray333/backend-labs/shop/internal/service/models/filter"
	"github.com/corray333/backend-labs/shop/internal/service/models/pagination"
	"github.com/corray333/backend-labs/shop/internal/service/models/user"
	"github.com/corray333/backend-labs/shop/internal/service/paginator"
)

// userFilterSpec is the user listing schema, resolved once at startup.
var userFilterSpec = filter.Spec{
	Searchable: []string{"name", "email"},
	Sortable: map[string]string{
		"createdAt": "created_at",
		"name":      "name",
		"email":     "email",
	},
	Rules: []filter.Rule{
		{Param: "role", Field: "role", Kind: filter.KindSet},
	},
}

// UserService serves user listings.
type UserService struct {
	pgClient *postgres.Client
	userRepo iuserrepo.PostgresRepository
}

// option is a function that configures the UserService.
type option func(*UserService)

// MustNewUserService creates a new UserService.
func MustNewUserService(opts ...option) *UserService {
	s := &UserService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.userRepo == nil {
		s.userRepo = userrepo.NewPostgresUserRepository(s.pgClient.Pool())
	}

	return s
}

// WithPostgresClient sets the Postgres client for the UserService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *UserService) {
		s.pgClient = pgClient
	}
}

// WithUserRepository overrides the user repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUserRepository(repo iuserrepo.PostgresRepository) option {
	return func(s *UserService) {
		s.userRepo = repo
	}
}

// GetUsers retrieves one page of users.
func (s *UserService) GetUsers(
	ctx context.Context,
	req pagination.PageRequest,
) (*pagination.PageResult[user.User], error) {
	return paginator.Paginate(ctx, s.userRepo, req, userFilterSpec)
}
