package aspect

import "github.com/pkg/errors"

var (
	ErrUnknownMarker    = errors.New("unknown marker")
	ErrInvalidMarker    = errors.New("invalid marker")
	ErrDuplicateHandler = errors.New("handler already registered")
	ErrSealed           = errors.New("registry is sealed")
	ErrNoHandler        = errors.New("no handler registered")
	ErrNilHandler       = errors.New("nil handler")
	ErrNilBody          = errors.New("nil operation body")
	ErrResultType       = errors.New("unexpected result type")
)
