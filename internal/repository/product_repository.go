package repository

import (
	"context"
	"errors"

	"github.com/snic-labs/policy-api/internal/domain"
	"github.com/snic-labs/policy-api/internal/observability"

	"gorm.io/gorm"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductHasPolicies = errors.New("product has associated policies")
)

type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id uint) (*domain.Product, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	DeleteByID(ctx context.Context, id uint) error
}

type GormProductRepository struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &GormProductRepository{db: db} }

func (r *GormProductRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("Features", func(tx *gorm.DB) *gorm.DB { return tx.Order("features.id ASC") })
}

// List returns every product, newest first, with creator and features loaded.
func (r *GormProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := r.withRelations(ctx).Order("products.created_at DESC").Order("products.id DESC").Find(&products).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "product", "list", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "product", "list", "success")
	return products, nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var p domain.Product
	err := r.withRelations(ctx).First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "product", "find_by_id", "not_found")
			return nil, ErrProductNotFound
		}
		observability.RecordRepositoryOperation(ctx, "product", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "product", "find_by_id", "success")
	return &p, nil
}

func (r *GormProductRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "product", "exists", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(ctx, "product", "exists", "success")
	return count > 0, nil
}

// Create inserts the product together with its features.
func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "product", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "product", "create", "success")
	return nil
}

// Update writes name, price, active flag and updated_at. Features are left
// untouched.
func (r *GormProductRepository) Update(ctx context.Context, product *domain.Product) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":       product.Name,
			"price":      product.Price,
			"is_active":  product.IsActive,
			"updated_at": product.UpdatedAt,
		})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "product", "update", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "product", "update", "not_found")
		return ErrProductNotFound
	}
	observability.RecordRepositoryOperation(ctx, "product", "update", "success")
	return nil
}

// DeleteByID removes a product and its features. Products still referenced
// by a policy are refused with ErrProductHasPolicies.
func (r *GormProductRepository) DeleteByID(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product domain.Product
		if err := tx.Select("id").First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		var policies int64
		if err := tx.Model(&domain.Policy{}).Where("product_id = ?", id).Count(&policies).Error; err != nil {
			return err
		}
		if policies > 0 {
			return ErrProductHasPolicies
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.Feature{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Product{}, id).Error
	})
	switch {
	case err == nil:
		observability.RecordRepositoryOperation(ctx, "product", "delete_by_id", "success")
	case errors.Is(err, ErrProductNotFound):
		observability.RecordRepositoryOperation(ctx, "product", "delete_by_id", "not_found")
	case errors.Is(err, ErrProductHasPolicies), errors.Is(err, gorm.ErrForeignKeyViolated):
		observability.RecordRepositoryOperation(ctx, "product", "delete_by_id", "conflict")
		return ErrProductHasPolicies
	default:
		observability.RecordRepositoryOperation(ctx, "product", "delete_by_id", "error")
	}
	return err
}
