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

type CreatePolicyInput struct {
	PolicyNumber string        `json:"policy_number" validate:"required,max=50"`
	HolderName   string        `json:"holder_name" validate:"required,max=100"`
	StartDate    time.Time     `json:"start_date" validate:"required"`
	EndDate      time.Time     `json:"end_date" validate:"required,gtfield=StartDate"`
	Premium      domain.Amount `json:"premium" validate:"gt=0"`
	ProductID    uint          `json:"product_id" validate:"required"`
	UserID       uint          `json:"user_id" validate:"required"`
}

type UpdatePolicyInput struct {
	HolderName string        `json:"holder_name" validate:"required,max=100"`
	StartDate  time.Time     `json:"start_date" validate:"required"`
	EndDate    time.Time     `json:"end_date" validate:"required,gtfield=StartDate"`
	Premium    domain.Amount `json:"premium" validate:"gt=0"`
	ProductID  uint          `json:"product_id" validate:"required"`
	UserID     uint          `json:"user_id" validate:"required"`
}

type PolicyView struct {
	ID           uint          `json:"id"`
	PolicyNumber string        `json:"policy_number"`
	HolderName   string        `json:"holder_name"`
	StartDate    time.Time     `json:"start_date"`
	EndDate      time.Time     `json:"end_date"`
	Premium      domain.Amount `json:"premium"`
	ProductID    uint          `json:"product_id"`
	ProductName  string        `json:"product_name"`
	UserID       uint          `json:"user_id"`
	Username     string        `json:"username"`
	IsActive     bool          `json:"is_active"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    *time.Time    `json:"updated_at,omitempty"`
}

func newPolicyView(p domain.Policy, now time.Time) PolicyView {
	v := PolicyView{
		ID:           p.ID,
		PolicyNumber: p.PolicyNumber,
		HolderName:   p.HolderName,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		Premium:      p.Premium,
		ProductID:    p.ProductID,
		UserID:       p.UserID,
		IsActive:     p.ActiveAt(now),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Product != nil {
		v.ProductName = p.Product.Name
	}
	if p.User != nil {
		v.Username = p.User.Username
	}
	return v
}

type PolicyService struct {
	policies repository.PolicyRepository
	products repository.ProductRepository
	users    repository.UserRepository
	logger   *slog.Logger
	now      func() time.Time
}

func NewPolicyService(policies repository.PolicyRepository, products repository.ProductRepository, users repository.UserRepository, logger *slog.Logger) *PolicyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PolicyService{
		policies: policies,
		products: products,
		users:    users,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *PolicyService) list(ctx context.Context, filter repository.PolicyFilter) ([]PolicyView, error) {
	policies, err := s.policies.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: list policies: %w", ErrOperationFailed, err)
	}
	now := s.now()
	out := make([]PolicyView, 0, len(policies))
	for _, p := range policies {
		out = append(out, newPolicyView(p, now))
	}
	return out, nil
}

func (s *PolicyService) List(ctx context.Context) ([]PolicyView, error) {
	return s.list(ctx, repository.PolicyFilter{})
}

func (s *PolicyService) ListByProduct(ctx context.Context, productID uint) ([]PolicyView, error) {
	return s.list(ctx, repository.PolicyFilter{ProductID: productID})
}

// ListByUser fails with ErrUserNotFound when the user does not exist, so an
// empty list always means a known user without policies.
func (s *PolicyService) ListByUser(ctx context.Context, userID uint) ([]PolicyView, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: find user: %w", ErrOperationFailed, err)
	}
	return s.list(ctx, repository.PolicyFilter{UserID: userID})
}

// ListActive returns policies whose coverage period contains the current
// instant.
func (s *PolicyService) ListActive(ctx context.Context) ([]PolicyView, error) {
	now := s.now()
	return s.list(ctx, repository.PolicyFilter{ActiveAt: &now})
}

func (s *PolicyService) Get(ctx context.Context, id uint) (*PolicyView, error) {
	p, err := s.policies.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPolicyNotFound) {
			return nil, ErrPolicyNotFound
		}
		return nil, fmt.Errorf("%w: find policy: %w", ErrOperationFailed, err)
	}
	v := newPolicyView(*p, s.now())
	return &v, nil
}

func (s *PolicyService) checkReferences(ctx context.Context, productID, userID uint) error {
	ok, err := s.products.Exists(ctx, productID)
	if err != nil {
		return fmt.Errorf("%w: check product: %w", ErrOperationFailed, err)
	}
	if !ok {
		return ErrUnknownProduct
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUnknownUser
		}
		return fmt.Errorf("%w: check user: %w", ErrOperationFailed, err)
	}
	return nil
}

func (s *PolicyService) Create(ctx context.Context, in CreatePolicyInput) (*PolicyView, error) {
	if !in.EndDate.After(in.StartDate) {
		return nil, ErrInvalidPolicyPeriod
	}
	if err := s.checkReferences(ctx, in.ProductID, in.UserID); err != nil {
		return nil, err
	}
	number := strings.TrimSpace(in.PolicyNumber)
	taken, err := s.policies.ExistsByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("%w: check policy number: %w", ErrOperationFailed, err)
	}
	if taken {
		return nil, ErrPolicyNumberTaken
	}

	policy := &domain.Policy{
		PolicyNumber: number,
		HolderName:   strings.TrimSpace(in.HolderName),
		StartDate:    in.StartDate.UTC(),
		EndDate:      in.EndDate.UTC(),
		Premium:      in.Premium,
		ProductID:    in.ProductID,
		UserID:       in.UserID,
		CreatedAt:    s.now(),
	}
	if err := s.policies.Create(ctx, policy); err != nil {
		if errors.Is(err, repository.ErrPolicyNumberExists) {
			return nil, ErrPolicyNumberTaken
		}
		return nil, fmt.Errorf("%w: create policy: %w", ErrOperationFailed, err)
	}
	s.logger.InfoContext(ctx, "policy created", "policy_id", policy.ID, "policy_number", policy.PolicyNumber)
	return s.Get(ctx, policy.ID)
}

// Update rewrites a policy in place. The policy number is immutable.
func (s *PolicyService) Update(ctx context.Context, id uint, in UpdatePolicyInput) (*PolicyView, error) {
	if !in.EndDate.After(in.StartDate) {
		return nil, ErrInvalidPolicyPeriod
	}
	if _, err := s.policies.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPolicyNotFound) {
			return nil, ErrPolicyNotFound
		}
		return nil, fmt.Errorf("%w: find policy: %w", ErrOperationFailed, err)
	}
	if err := s.checkReferences(ctx, in.ProductID, in.UserID); err != nil {
		return nil, err
	}
	now := s.now()
	err := s.policies.Update(ctx, &domain.Policy{
		ID:         id,
		HolderName: strings.TrimSpace(in.HolderName),
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Premium:    in.Premium,
		ProductID:  in.ProductID,
		UserID:     in.UserID,
		UpdatedAt:  &now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrPolicyNotFound) {
			return nil, ErrPolicyNotFound
		}
		return nil, fmt.Errorf("%w: update policy: %w", ErrOperationFailed, err)
	}
	return s.Get(ctx, id)
}

func (s *PolicyService) Delete(ctx context.Context, id uint) error {
	if err := s.policies.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPolicyNotFound) {
			return ErrPolicyNotFound
		}
		return fmt.Errorf("%w: delete policy: %w", ErrOperationFailed, err)
	}
	s.logger.InfoContext(ctx, "policy deleted", "policy_id", id)
	return nil
}
