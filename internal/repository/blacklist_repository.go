package repository

import (
	"context"
	"errors"
	"time"

	"github.com/snic-labs/policy-api/internal/domain"
	"github.com/snic-labs/policy-api/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrBlacklistEntryNotFound = errors.New("blacklist entry not found")

type BlacklistRepository interface {
	// ExistsActive reports whether tokenID has an entry that expires after now.
	ExistsActive(ctx context.Context, tokenID string, now time.Time) (bool, error)
	FindByTokenID(ctx context.Context, tokenID string) (*domain.BlacklistedToken, error)
	// Create inserts entry unless its token id is already present. created is
	// false when another writer got there first.
	Create(ctx context.Context, entry *domain.BlacklistedToken) (created bool, err error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	ListActive(ctx context.Context, now time.Time, req PageRequest) (PageResult[domain.BlacklistedToken], error)
}

type GormBlacklistRepository struct{ db *gorm.DB }

func NewBlacklistRepository(db *gorm.DB) BlacklistRepository {
	return &GormBlacklistRepository{db: db}
}

func (r *GormBlacklistRepository) ExistsActive(ctx context.Context, tokenID string, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.BlacklistedToken{}).
		Where("token_id = ? AND expires_at > ?", tokenID, now.UTC()).
		Count(&count).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "blacklist", "exists_active", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(ctx, "blacklist", "exists_active", "success")
	return count > 0, nil
}

func (r *GormBlacklistRepository) FindByTokenID(ctx context.Context, tokenID string) (*domain.BlacklistedToken, error) {
	var entry domain.BlacklistedToken
	err := r.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "blacklist", "find_by_token_id", "not_found")
			return nil, ErrBlacklistEntryNotFound
		}
		observability.RecordRepositoryOperation(ctx, "blacklist", "find_by_token_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "blacklist", "find_by_token_id", "success")
	return &entry, nil
}

func (r *GormBlacklistRepository) Create(ctx context.Context, entry *domain.BlacklistedToken) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "token_id"}}, DoNothing: true}).
		Create(entry)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(ctx, "blacklist", "create", "duplicate")
			return false, nil
		}
		observability.RecordRepositoryOperation(ctx, "blacklist", "create", "error")
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "blacklist", "create", "duplicate")
		return false, nil
	}
	observability.RecordRepositoryOperation(ctx, "blacklist", "create", "success")
	return true, nil
}

func (r *GormBlacklistRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", now.UTC()).
		Delete(&domain.BlacklistedToken{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "blacklist", "delete_expired", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(ctx, "blacklist", "delete_expired", "success")
	return res.RowsAffected, nil
}

func (r *GormBlacklistRepository) ListActive(ctx context.Context, now time.Time, pr PageRequest) (PageResult[domain.BlacklistedToken], error) {
	req := normalizePageRequest(pr)
	result := PageResult[domain.BlacklistedToken]{
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    []domain.BlacklistedToken{},
	}

	base := r.db.WithContext(ctx).
		Model(&domain.BlacklistedToken{}).
		Where("expires_at > ?", now.UTC())
	if err := base.Session(&gorm.Session{}).Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "blacklist", "list_active", "error")
		return PageResult[domain.BlacklistedToken]{}, err
	}

	offset := (req.Page - 1) * req.PageSize
	err := base.Session(&gorm.Session{}).
		Order("blacklisted_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(req.PageSize).
		Find(&result.Items).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "blacklist", "list_active", "error")
		return PageResult[domain.BlacklistedToken]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, req.PageSize)
	observability.RecordRepositoryOperation(ctx, "blacklist", "list_active", "success")
	return result, nil
}
