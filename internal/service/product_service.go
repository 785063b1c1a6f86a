package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/snic-labs/policy-api/internal/domain"
	"github.com/snic-labs/policy-api/internal/repository"
)

type FeatureInput struct {
	Title  string `json:"title" validate:"required,max=100"`
	Detail string `json:"detail" validate:"required,max=500"`
}

type CreateProductInput struct {
	Name     string         `json:"name" validate:"required,max=200"`
	Price    domain.Amount  `json:"price" validate:"gt=0"`
	IsActive *bool          `json:"is_active"`
	Features []FeatureInput `json:"features" validate:"max=50,dive"`
}

type UpdateProductInput struct {
	Name     string        `json:"name" validate:"required,max=200"`
	Price    domain.Amount `json:"price" validate:"gt=0"`
	IsActive bool          `json:"is_active"`
}

type FeatureView struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Detail    string    `json:"detail"`
	ProductID uint      `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ProductView struct {
	ID                uint          `json:"id"`
	Name              string        `json:"name"`
	Price             domain.Amount `json:"price"`
	IsActive          bool          `json:"is_active"`
	CreatedByUserID   uint          `json:"created_by_user_id"`
	CreatedByUsername string        `json:"created_by_username"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         *time.Time    `json:"updated_at,omitempty"`
	Features          []FeatureView `json:"features"`
}

func newProductView(p domain.Product) ProductView {
	v := ProductView{
		ID:              p.ID,
		Name:            p.Name,
		Price:           p.Price,
		IsActive:        p.IsActive,
		CreatedByUserID: p.CreatedByUserID,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		Features:        make([]FeatureView, 0, len(p.Features)),
	}
	if p.CreatedBy != nil {
		v.CreatedByUsername = p.CreatedBy.Username
	}
	for _, f := range p.Features {
		v.Features = append(v.Features, FeatureView{
			ID:        f.ID,
			Title:     f.Title,
			Detail:    f.Detail,
			ProductID: f.ProductID,
			CreatedAt: f.CreatedAt,
		})
	}
	return v
}

type ProductService struct {
	products repository.ProductRepository
	users    repository.UserRepository
	logger   *slog.Logger
	now      func() time.Time
}

func NewProductService(products repository.ProductRepository, users repository.UserRepository, logger *slog.Logger) *ProductService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductService{
		products: products,
		users:    users,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProductService) List(ctx context.Context) ([]ProductView, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list products: %w", ErrOperationFailed, err)
	}
	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, newProductView(p))
	}
	return out, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*ProductView, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: find product: %w", ErrOperationFailed, err)
	}
	v := newProductView(*p)
	return &v, nil
}

// Create stores a product owned by creatorID. Products are active unless the
// input says otherwise.
func (s *ProductService) Create(ctx context.Context, creatorID uint, in CreateProductInput) (*ProductView, error) {
	if _, err := s.users.FindByID(ctx, creatorID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("%w: find creator: %w", ErrOperationFailed, err)
	}

	now := s.now()
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	product := &domain.Product{
		Name:            strings.TrimSpace(in.Name),
		Price:           in.Price,
		IsActive:        active,
		CreatedByUserID: creatorID,
		CreatedAt:       now,
	}
	for _, f := range in.Features {
		product.Features = append(product.Features, domain.Feature{
			Title:     strings.TrimSpace(f.Title),
			Detail:    strings.TrimSpace(f.Detail),
			CreatedAt: now,
		})
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("%w: create product: %w", ErrOperationFailed, err)
	}
	s.logger.InfoContext(ctx, "product created", "product_id", product.ID, "created_by", creatorID)
	return s.Get(ctx, product.ID)
}

// Update changes name, price and active flag. Features keep their values.
func (s *ProductService) Update(ctx context.Context, id uint, in UpdateProductInput) (*ProductView, error) {
	now := s.now()
	err := s.products.Update(ctx, &domain.Product{
		ID:        id,
		Name:      strings.TrimSpace(in.Name),
		Price:     in.Price,
		IsActive:  in.IsActive,
		UpdatedAt: &now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: update product: %w", ErrOperationFailed, err)
	}
	return s.Get(ctx, id)
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	err := s.products.DeleteByID(ctx, id)
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "product deleted", "product_id", id)
		return nil
	case errors.Is(err, repository.ErrProductNotFound):
		return ErrProductNotFound
	case errors.Is(err, repository.ErrProductHasPolicies):
		return ErrProductHasPolicies
	default:
		return fmt.Errorf("%w: delete product: %w", ErrOperationFailed, err)
	}
}
