package service

import (
	"context"

	"github.com/snic-labs/policy-api/internal/domain"
	"github.com/snic-labs/policy-api/internal/repository"
	"github.com/snic-labs/policy-api/internal/security"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Logout(ctx context.Context, token string, userID uint) error
	Profile(ctx context.Context, userID uint) (*domain.User, error)
	TokenStatus(ctx context.Context, token string, claims *security.Claims) (*TokenStatus, error)
}

type TokenRevoker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string, userID uint, reason string) error
}

type BlacklistAuditor interface {
	ListActive(ctx context.Context, req repository.PageRequest) (repository.PageResult[BlacklistEntryView], error)
}

type ProductServiceInterface interface {
	List(ctx context.Context) ([]ProductView, error)
	Get(ctx context.Context, id uint) (*ProductView, error)
	Create(ctx context.Context, creatorID uint, in CreateProductInput) (*ProductView, error)
	Update(ctx context.Context, id uint, in UpdateProductInput) (*ProductView, error)
	Delete(ctx context.Context, id uint) error
}

type PolicyServiceInterface interface {
	List(ctx context.Context) ([]PolicyView, error)
	ListByProduct(ctx context.Context, productID uint) ([]PolicyView, error)
	ListByUser(ctx context.Context, userID uint) ([]PolicyView, error)
	ListActive(ctx context.Context) ([]PolicyView, error)
	Get(ctx context.Context, id uint) (*PolicyView, error)
	Create(ctx context.Context, in CreatePolicyInput) (*PolicyView, error)
	Update(ctx context.Context, id uint, in UpdatePolicyInput) (*PolicyView, error)
	Delete(ctx context.Context, id uint) error
}
