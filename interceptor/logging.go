package interceptor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/CherkashinEvgeny/goadvice/aspect"
)

const prefix = "Interceptor >> "

// Logging is the advice set writing one log line per lifecycle stage of an
// intercepted call. It keeps no state between calls.
type Logging struct {
	logger *slog.Logger
}

func NewLogging(logger *slog.Logger) *Logging {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logging{logger: logger}
}

func (l *Logging) Before(ctx context.Context, jp aspect.JoinPoint) error {
	l.logger.InfoContext(ctx, prefix+jp.Signature(),
		"stage", aspect.Before.String(),
		"call_id", jp.ID,
	)
	return nil
}

func (l *Logging) After(ctx context.Context, jp aspect.JoinPoint) error {
	l.logger.InfoContext(ctx, prefix+jp.Signature(),
		"stage", aspect.After.String(),
		"call_id", jp.ID,
		"failed", jp.Err != nil,
	)
	return nil
}

func (l *Logging) Around(ctx context.Context, jp aspect.JoinPoint, proceed aspect.Proceed) (any, error) {
	l.logger.InfoContext(ctx, prefix+jp.Signature()+" entry",
		"stage", aspect.Around.String(),
		"call_id", jp.ID,
	)
	result, err := proceed(ctx)
	l.logger.InfoContext(ctx, prefix+jp.Signature()+" exit",
		"stage", aspect.Around.String(),
		"call_id", jp.ID,
	)
	return result, err
}

func (l *Logging) AfterThrowing(ctx context.Context, jp aspect.JoinPoint) error {
	l.logger.InfoContext(ctx, prefix+jp.Signature(),
		"stage", aspect.AfterThrowing.String(),
		"call_id", jp.ID,
		"error_type", ErrorType(jp.Err),
		"error", jp.Err,
	)
	return nil
}

func (l *Logging) AfterReturning(ctx context.Context, jp aspect.JoinPoint) error {
	l.logger.InfoContext(ctx, prefix+jp.Signature(),
		"stage", aspect.AfterReturning.String(),
		"call_id", jp.ID,
		"value", jp.Result,
	)
	return nil
}

// Handler returns the plain handler for marker, nil for Around.
func (l *Logging) Handler(marker aspect.Marker) aspect.Handler {
	switch marker {
	case aspect.Before:
		return l.Before
	case aspect.After:
		return l.After
	case aspect.AfterThrowing:
		return l.AfterThrowing
	case aspect.AfterReturning:
		return l.AfterReturning
	default:
		return nil
	}
}

// ErrorType names the dynamic type of the root cause of err.
func ErrorType(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%T", errors.Cause(err))
}
