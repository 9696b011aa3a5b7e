package errors

import "fmt"

var (
	ErrNotFound           = fmt.Errorf("not found")
	ErrInvariantViolation = fmt.Errorf("invariant violation")
	ErrUnknownUser        = fmt.Errorf("unknown user")
	ErrNoCurrentUser      = fmt.Errorf("no current user")
	ErrEmptyContent       = fmt.Errorf("message content is empty")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidEmail       = fmt.Errorf("invalid email")
	ErrInvalidProfile     = fmt.Errorf("invalid profile")
	ErrCorruptBlob        = fmt.Errorf("corrupt blob")
)
