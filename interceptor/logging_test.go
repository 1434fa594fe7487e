package interceptor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CherkashinEvgeny/goadvice/aspect"
)

type customError struct{}

func (customError) Error() string { return "custom" }

func captureLogs(t *testing.T) (*slog.Logger, func() []map[string]any) {
	t.Helper()
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	return logger, func() []map[string]any {
		var out []map[string]any
		scanner := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
		for scanner.Scan() {
			rec := map[string]any{}
			require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
			out = append(out, rec)
		}
		buf.Reset()
		return out
	}
}

func TestLogging(t *testing.T) {
	ctx := context.Background()

	t.Run("NewLogging falls back to the default logger", func(t *testing.T) {
		l := NewLogging(nil)
		assert.Equal(t, slog.Default(), l.logger)
	})

	t.Run("plain handlers log one line with stage and call id", func(t *testing.T) {
		logger, logs := captureLogs(t)
		l := NewLogging(logger)

		for _, marker := range []aspect.Marker{aspect.Before, aspect.After, aspect.AfterThrowing, aspect.AfterReturning} {
			jp := aspect.JoinPoint{ID: "id-" + marker.String(), Name: "op", Marker: marker}
			require.NoError(t, l.Handler(marker)(ctx, jp))

			records := logs()
			require.Len(t, records, 1, marker.String())
			assert.Equal(t, "Interceptor >> op()", records[0]["msg"])
			assert.Equal(t, marker.String(), records[0]["stage"])
			assert.Equal(t, "id-"+marker.String(), records[0]["call_id"])
			assert.Equal(t, "INFO", records[0]["level"])
		}
	})

	t.Run("Handler has no plain handler for around", func(t *testing.T) {
		assert.Nil(t, NewLogging(nil).Handler(aspect.Around))
	})

	t.Run("around logs entry and exit", func(t *testing.T) {
		logger, logs := captureLogs(t)
		l := NewLogging(logger)

		result, err := l.Around(ctx, aspect.JoinPoint{Name: "around"}, func(ctx context.Context) (any, error) {
			logger.InfoContext(ctx, "body")
			return "done", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "done", result)

		records := logs()
		require.Len(t, records, 3)
		assert.Equal(t, "Interceptor >> around() entry", records[0]["msg"])
		assert.Equal(t, "body", records[1]["msg"])
		assert.Equal(t, "Interceptor >> around() exit", records[2]["msg"])
	})

	t.Run("around passes the body error through", func(t *testing.T) {
		logger, _ := captureLogs(t)
		bodyErr := errors.New("boom")
		_, err := NewLogging(logger).Around(ctx, aspect.JoinPoint{Name: "around"}, func(context.Context) (any, error) {
			return nil, bodyErr
		})
		assert.Same(t, bodyErr, err)
	})

	t.Run("after records whether the body failed", func(t *testing.T) {
		logger, logs := captureLogs(t)
		l := NewLogging(logger)

		require.NoError(t, l.After(ctx, aspect.JoinPoint{Name: "after", Err: errors.New("boom")}))
		records := logs()
		require.Len(t, records, 1)
		assert.Equal(t, true, records[0]["failed"])
	})

	t.Run("afterThrowing logs the root cause type", func(t *testing.T) {
		logger, logs := captureLogs(t)
		l := NewLogging(logger)

		err := errors.Wrap(customError{}, "wrapped")
		require.NoError(t, l.AfterThrowing(ctx, aspect.JoinPoint{Name: "afterThrowing", Err: err}))
		records := logs()
		require.Len(t, records, 1)
		assert.Equal(t, "interceptor.customError", records[0]["error_type"])
		assert.Equal(t, "wrapped: custom", records[0]["error"])
	})

	t.Run("afterReturning logs the value", func(t *testing.T) {
		logger, logs := captureLogs(t)
		l := NewLogging(logger)

		require.NoError(t, l.AfterReturning(ctx, aspect.JoinPoint{Name: "afterReturning", Result: "finished afterReturning()"}))
		records := logs()
		require.Len(t, records, 1)
		assert.Equal(t, "finished afterReturning()", records[0]["value"])
	})
}

func TestErrorType(t *testing.T) {
	assert.Equal(t, "", ErrorType(nil))
	assert.Equal(t, "interceptor.customError", ErrorType(customError{}))
	assert.Equal(t, "interceptor.customError", ErrorType(errors.WithStack(customError{})))
	assert.Equal(t, "*errors.fundamental", ErrorType(errors.New("plain")))
}
