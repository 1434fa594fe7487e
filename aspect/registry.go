package aspect

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type advice func(ctx context.Context, jp JoinPoint, proceed Proceed) (any, error)

// Registry maps each marker to the advice its operations are routed
// through. It is populated at start-up and read-only once sealed.
type Registry struct {
	mu           sync.RWMutex
	advices      map[Marker]advice
	interceptors []AroundHandler
	sealed       bool
	logger       *slog.Logger
}

type Option func(r *Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithInterceptor wraps every dispatched call, whatever its marker.
// Interceptors run outside the marker advice, first one outermost.
func WithInterceptor(interceptor AroundHandler) Option {
	return func(r *Registry) {
		if interceptor != nil {
			r.interceptors = append(r.interceptors, interceptor)
		}
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		advices: make(map[Marker]advice, len(markerNames)),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds a handler to one of the Before, After, AfterThrowing or
// AfterReturning markers.
func (r *Registry) Register(marker Marker, handler Handler) error {
	if handler == nil {
		return errors.Wrapf(ErrNilHandler, "marker='%s'", marker)
	}
	if !marker.Valid() {
		return errors.Wrapf(ErrInvalidMarker, "marker='%s' is out of range", marker)
	}
	if marker == Around {
		return errors.Wrapf(ErrInvalidMarker, "marker='%s' requires an around handler", marker)
	}
	return r.bind(marker, adapt(marker, handler))
}

func (r *Registry) RegisterAround(handler AroundHandler) error {
	if handler == nil {
		return errors.Wrapf(ErrNilHandler, "marker='%s'", Around)
	}
	return r.bind(Around, advice(handler))
}

func (r *Registry) bind(marker Marker, a advice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return errors.Wrapf(ErrSealed, "marker='%s'", marker)
	}
	if _, found := r.advices[marker]; found {
		return errors.Wrapf(ErrDuplicateHandler, "marker='%s'", marker)
	}
	r.advices[marker] = a
	r.logger.Debug("handler registered", "marker", marker.String())
	return nil
}

// Seal forbids further registration.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

func (r *Registry) Registered(marker Marker) bool {
	r.mu.RLock()
	_, found := r.advices[marker]
	r.mu.RUnlock()
	return found
}

// Operation is a call of a marked body.
type Operation struct {
	Name   string
	Marker Marker
	Args   []Param
	Body   Proceed
}

// Invoke routes op through the advice bound to its marker. Without a
// bound advice the body is not run.
func (r *Registry) Invoke(ctx context.Context, op Operation) (any, error) {
	if op.Body == nil {
		return nil, errors.Wrapf(ErrNilBody, "operation='%s'", op.Name)
	}
	r.mu.RLock()
	a, found := r.advices[op.Marker]
	interceptors := r.interceptors
	r.mu.RUnlock()
	if !found {
		return nil, errors.Wrapf(ErrNoHandler, "marker='%s' operation='%s'", op.Marker, op.Name)
	}

	jp := JoinPoint{
		ID:     uuid.NewString(),
		Name:   op.Name,
		Marker: op.Marker,
		Args:   op.Args,
	}
	r.logger.DebugContext(ctx, "dispatching call",
		"call_id", jp.ID,
		"operation", op.Name,
		"marker", op.Marker.String(),
	)

	call := func(ctx context.Context) (any, error) {
		return a(ctx, jp, op.Body)
	}
	if len(interceptors) == 0 {
		return call(ctx)
	}
	return ChainAround(interceptors...)(ctx, jp, call)
}
