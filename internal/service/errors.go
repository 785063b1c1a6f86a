package service

import "errors"

var (
	// ErrOperationFailed wraps persistence failures of the blacklist and
	// credential stores. Callers decide whether to fail open or closed.
	ErrOperationFailed    = errors.New("operation failed")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")

	ErrProductNotFound     = errors.New("product not found")
	ErrProductHasPolicies  = errors.New("product has associated policies")
	ErrPolicyNotFound      = errors.New("policy not found")
	ErrPolicyNumberTaken   = errors.New("policy number already exists")
	ErrInvalidPolicyPeriod = errors.New("end date must be after start date")
	// ErrUnknownProduct and ErrUnknownUser flag references in a request body
	// that point at nothing, as opposed to a missing path resource.
	ErrUnknownProduct = errors.New("referenced product not found")
	ErrUnknownUser    = errors.New("referenced user not found")
)
