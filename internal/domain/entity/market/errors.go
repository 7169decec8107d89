package market

import "errors"

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrMissingField     = errors.New("missing field")
	ErrParse            = errors.New("parse error")
	ErrUnknownMarket    = errors.New("unknown market")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrSecurityNotFound = errors.New("security not found")
)

// ArgumentError reports an unsupported positional argument. It matches
// ErrInvalidArgument under errors.Is and keeps the exact caller-facing message.
type ArgumentError struct {
	Position int
	Value    string
	Message  string
}

func (e *ArgumentError) Error() string {
	return e.Message
}

func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}
