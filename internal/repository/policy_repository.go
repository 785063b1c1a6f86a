package repository

import (
	"context"
	"errors"
	"time"

	"github.com/snic-labs/policy-api/internal/domain"
	"github.com/snic-labs/policy-api/internal/observability"

	"gorm.io/gorm"
)

var (
	ErrPolicyNotFound     = errors.New("policy not found")
	ErrPolicyNumberExists = errors.New("policy number already exists")
)

// PolicyFilter narrows List. Zero values mean no constraint.
type PolicyFilter struct {
	ProductID uint
	UserID    uint
	ActiveAt  *time.Time
}

type PolicyRepository interface {
	List(ctx context.Context, filter PolicyFilter) ([]domain.Policy, error)
	FindByID(ctx context.Context, id uint) (*domain.Policy, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	Create(ctx context.Context, policy *domain.Policy) error
	Update(ctx context.Context, policy *domain.Policy) error
	DeleteByID(ctx context.Context, id uint) error
}

type GormPolicyRepository struct{ db *gorm.DB }

func NewPolicyRepository(db *gorm.DB) PolicyRepository { return &GormPolicyRepository{db: db} }

func (r *GormPolicyRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Product").Preload("User")
}

// List returns matching policies, newest first, with product and holder
// account loaded. ActiveAt keeps policies whose period contains that instant.
func (r *GormPolicyRepository) List(ctx context.Context, filter PolicyFilter) ([]domain.Policy, error) {
	op := "list"
	q := r.withRelations(ctx)
	if filter.ProductID != 0 {
		op = "list_by_product"
		q = q.Where("policies.product_id = ?", filter.ProductID)
	}
	if filter.UserID != 0 {
		op = "list_by_user"
		q = q.Where("policies.user_id = ?", filter.UserID)
	}
	if filter.ActiveAt != nil {
		op = "list_active"
		at := filter.ActiveAt.UTC()
		q = q.Where("policies.start_date <= ? AND policies.end_date >= ?", at, at)
	}

	var policies []domain.Policy
	if err := q.Order("policies.created_at DESC").Order("policies.id DESC").Find(&policies).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "policy", op, "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "policy", op, "success")
	return policies, nil
}

func (r *GormPolicyRepository) FindByID(ctx context.Context, id uint) (*domain.Policy, error) {
	var p domain.Policy
	err := r.withRelations(ctx).First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "policy", "find_by_id", "not_found")
			return nil, ErrPolicyNotFound
		}
		observability.RecordRepositoryOperation(ctx, "policy", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "policy", "find_by_id", "success")
	return &p, nil
}

func (r *GormPolicyRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Policy{}).Where("policy_number = ?", number).Count(&count).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "policy", "exists_by_number", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(ctx, "policy", "exists_by_number", "success")
	return count > 0, nil
}

func (r *GormPolicyRepository) Create(ctx context.Context, policy *domain.Policy) error {
	err := r.db.WithContext(ctx).Omit("Product", "User").Create(policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(ctx, "policy", "create", "conflict")
			return ErrPolicyNumberExists
		}
		observability.RecordRepositoryOperation(ctx, "policy", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "policy", "create", "success")
	return nil
}

// Update rewrites everything but the policy number and creation time.
func (r *GormPolicyRepository) Update(ctx context.Context, policy *domain.Policy) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Policy{}).
		Where("id = ?", policy.ID).
		Updates(map[string]any{
			"holder_name": policy.HolderName,
			"start_date":  policy.StartDate.UTC(),
			"end_date":    policy.EndDate.UTC(),
			"premium":     policy.Premium,
			"product_id":  policy.ProductID,
			"user_id":     policy.UserID,
			"updated_at":  policy.UpdatedAt,
		})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "policy", "update", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "policy", "update", "not_found")
		return ErrPolicyNotFound
	}
	observability.RecordRepositoryOperation(ctx, "policy", "update", "success")
	return nil
}

func (r *GormPolicyRepository) DeleteByID(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Policy{}, id)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "policy", "delete_by_id", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "policy", "delete_by_id", "not_found")
		return ErrPolicyNotFound
	}
	observability.RecordRepositoryOperation(ctx, "policy", "delete_by_id", "success")
	return nil
}
