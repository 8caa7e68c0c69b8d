package claims

import "errors"

var (
	ErrClaimNotFound  = errors.New("claim not found")
	ErrPolicyNotFound = errors.New("policy not found for claim")
	ErrNoImages       = errors.New("claim has no images")
	ErrAlreadyDecided = errors.New("claim is no longer pending")
	ErrShuttingDown   = errors.New("dispatcher is shutting down")
)
