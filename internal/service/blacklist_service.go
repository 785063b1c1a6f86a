package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/snic-labs/policy-api/internal/domain"
	"github.com/snic-labs/policy-api/internal/observability"
	"github.com/snic-labs/policy-api/internal/repository"
	"github.com/snic-labs/policy-api/internal/security"
)

const DefaultRevokeReason = "Logout"

type BlacklistEntryView struct {
	TokenID       string    `json:"token_id"`
	UserID        uint      `json:"user_id"`
	Reason        string    `json:"reason"`
	BlacklistedAt time.Time `json:"blacklisted_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

type BlacklistService struct {
	repo   repository.BlacklistRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewBlacklistService(repo repository.BlacklistRepository, logger *slog.Logger) *BlacklistService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BlacklistService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// IsRevoked reports whether token carries a jti with an unexpired blacklist
// entry. Tokens that cannot be decoded or carry no jti are never revoked.
func (s *BlacklistService) IsRevoked(ctx context.Context, token string) (bool, error) {
	claims, err := security.ParseUnverified(token)
	if err != nil || claims.ID == "" {
		return false, nil
	}
	revoked, err := s.repo.ExistsActive(ctx, claims.ID, s.now())
	if err != nil {
		return false, fmt.Errorf("%w: check blacklist: %w", ErrOperationFailed, err)
	}
	return revoked, nil
}

// Revoke blacklists token until its own expiry. Undecodable tokens and tokens
// without a jti are ignored. Revoking an already revoked token is a no-op.
func (s *BlacklistService) Revoke(ctx context.Context, token string, userID uint, reason string) error {
	if reason == "" {
		reason = DefaultRevokeReason
	}
	claims, err := security.ParseUnverified(token)
	if err != nil || claims.ID == "" {
		s.logger.DebugContext(ctx, "revoke skipped for undecodable token", "user_id", userID)
		observability.RecordBlacklistRevocation(ctx, "skipped")
		return nil
	}

	if _, err := s.repo.FindByTokenID(ctx, claims.ID); err == nil {
		observability.RecordBlacklistRevocation(ctx, "already_revoked")
		return nil
	} else if !errors.Is(err, repository.ErrBlacklistEntryNotFound) {
		observability.RecordBlacklistRevocation(ctx, "error")
		return fmt.Errorf("%w: lookup blacklist entry: %w", ErrOperationFailed, err)
	}

	now := s.now()
	expiresAt := now.Add(security.TokenValidity)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time.UTC()
	}
	created, err := s.repo.Create(ctx, &domain.BlacklistedToken{
		TokenID:       claims.ID,
		Token:         token,
		UserID:        userID,
		BlacklistedAt: now,
		ExpiresAt:     expiresAt,
		Reason:        reason,
	})
	if err != nil {
		observability.RecordBlacklistRevocation(ctx, "error")
		return fmt.Errorf("%w: insert blacklist entry: %w", ErrOperationFailed, err)
	}
	if !created {
		observability.RecordBlacklistRevocation(ctx, "already_revoked")
		return nil
	}
	s.logger.InfoContext(ctx, "token revoked", "token_id", claims.ID, "user_id", userID, "reason", reason)
	observability.RecordBlacklistRevocation(ctx, "success")
	return nil
}

// PurgeExpired deletes every entry whose expiry is not after now and returns
// how many were removed.
func (s *BlacklistService) PurgeExpired(ctx context.Context) (int64, error) {
	purged, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("%w: purge blacklist: %w", ErrOperationFailed, err)
	}
	return purged, nil
}

func (s *BlacklistService) ListActive(ctx context.Context, req repository.PageRequest) (repository.PageResult[BlacklistEntryView], error) {
	page, err := s.repo.ListActive(ctx, s.now(), req)
	if err != nil {
		return repository.PageResult[BlacklistEntryView]{}, fmt.Errorf("%w: list blacklist: %w", ErrOperationFailed, err)
	}
	views := make([]BlacklistEntryView, 0, len(page.Items))
	for _, e := range page.Items {
		views = append(views, BlacklistEntryView{
			TokenID:       e.TokenID,
			UserID:        e.UserID,
			Reason:        e.Reason,
			BlacklistedAt: e.BlacklistedAt,
			ExpiresAt:     e.ExpiresAt,
		})
	}
	return repository.PageResult[BlacklistEntryView]{
		Items:      views,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}, nil
}
