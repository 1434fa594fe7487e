package example

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/CherkashinEvgeny/goadvice/aspect"
)

const ReturnValue = "finished afterReturning()"

var ErrUnknownOperation = errors.New("unknown operation")

// Failure is the error afterThrowing always fails with.
type Failure struct {
	Operation string
}

func (f *Failure) Error() string {
	return "operation '" + f.Operation + "' failed"
}

func IsFailure(err error) bool {
	var failure *Failure
	return errors.As(err, &failure)
}

// Binding pairs an operation with the marker it is declared with.
type Binding struct {
	Name   string
	Marker aspect.Marker
}

var bindings = []Binding{
	{Name: "before", Marker: aspect.Before},
	{Name: "after", Marker: aspect.After},
	{Name: "around", Marker: aspect.Around},
	{Name: "afterThrowing", Marker: aspect.AfterThrowing},
	{Name: "afterReturning", Marker: aspect.AfterReturning},
}

func Bindings() []Binding {
	out := make([]Binding, len(bindings))
	copy(out, bindings)
	return out
}

// Example exposes one operation per marker. Every call is routed through
// the registry under the operation's marker.
type Example struct {
	registry *aspect.Registry
	logger   *slog.Logger
}

func New(registry *aspect.Registry, logger *slog.Logger) *Example {
	if logger == nil {
		logger = slog.Default()
	}
	return &Example{registry: registry, logger: logger}
}

func (e *Example) Before(ctx context.Context) error {
	return aspect.Run(ctx, e.registry, "before", aspect.Before, e.inside("before"))
}

func (e *Example) After(ctx context.Context) error {
	return aspect.Run(ctx, e.registry, "after", aspect.After, e.inside("after"))
}

func (e *Example) Around(ctx context.Context) error {
	return aspect.Run(ctx, e.registry, "around", aspect.Around, e.inside("around"))
}

func (e *Example) AfterThrowing(ctx context.Context) error {
	return aspect.Run(ctx, e.registry, "afterThrowing", aspect.AfterThrowing, func(ctx context.Context) error {
		e.logger.InfoContext(ctx, "Inside afterThrowing()")
		return errors.WithStack(&Failure{Operation: "afterThrowing"})
	})
}

func (e *Example) AfterReturning(ctx context.Context) (string, error) {
	return aspect.Call(ctx, e.registry, "afterReturning", aspect.AfterReturning, func(ctx context.Context) (string, error) {
		e.logger.InfoContext(ctx, "Inside afterReturning()")
		return ReturnValue, nil
	})
}

// Invoke calls an operation by name.
func (e *Example) Invoke(ctx context.Context, name string) (any, error) {
	switch name {
	case "before":
		return nil, e.Before(ctx)
	case "after":
		return nil, e.After(ctx)
	case "around":
		return nil, e.Around(ctx)
	case "afterThrowing":
		return nil, e.AfterThrowing(ctx)
	case "afterReturning":
		value, err := e.AfterReturning(ctx)
		if err != nil {
			return nil, err
		}
		return value, nil
	default:
		return nil, errors.Wrapf(ErrUnknownOperation, "operation='%s'", name)
	}
}

func (e *Example) inside(name string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		e.logger.InfoContext(ctx, "Inside "+name+"()")
		return nil
	}
}
