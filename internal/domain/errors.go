package domain

import "errors"

var (
	ErrAlreadyInitialized  = errors.New("registry already initialized")
	ErrDuplicateAgent      = errors.New("agent already registered")
	ErrDuplicateValidation = errors.New("validation already posted for day")
	ErrDuplicateAnchor     = errors.New("plan already anchored")
	ErrUnauthorized        = errors.New("caller is not the owner")
	ErrMetadataTooLong     = errors.New("field exceeds length bound")
	ErrBadRating           = errors.New("rating out of range")
	ErrNotFound            = errors.New("record not found")
	ErrBadDerivation       = errors.New("derivation proof mismatch")
	ErrPolicyDenied        = errors.New("registration denied by policy")
)
