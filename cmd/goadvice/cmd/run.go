package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/CherkashinEvgeny/goadvice/aspect"
	"github.com/CherkashinEvgeny/goadvice/example"
	"github.com/CherkashinEvgeny/goadvice/interceptor"
)

func newRunCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run [operation...]",
		Short: "Invoke example operations through their advice",
		Long: `Invokes the named example operations, or all of them in declaration order,
through the logging advice. afterThrowing fails by design and is reported, not fatal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			gatherer := prometheus.NewRegistry()
			registry, err := newRegistry(logger, gatherer, cfg.Metrics.Addr != "")
			if err != nil {
				return err
			}

			ops := args
			if len(ops) == 0 {
				ops = cfg.Operations
			}
			if len(ops) == 0 {
				for _, b := range example.Bindings() {
					ops = append(ops, b.Name)
				}
			}

			failed := invokeAll(cmd.Context(), example.New(registry, logger), ops, cmd.OutOrStdout())

			if cfg.Metrics.Addr != "" {
				if err := serveMetrics(cmd.Context(), cfg.Metrics.Addr, gatherer, logger); err != nil {
					return err
				}
			}
			if len(failed) > 0 {
				return errors.Errorf("operations failed: %s", strings.Join(failed, ", "))
			}
			return nil
		},
	}
}

// newRegistry installs the logging advice, plus metrics registered with
// reg when withMetrics is set, and seals the result.
func newRegistry(logger *slog.Logger, reg prometheus.Registerer, withMetrics bool) (*aspect.Registry, error) {
	var metrics *interceptor.Metrics
	opts := []aspect.Option{aspect.WithLogger(logger)}
	if withMetrics {
		var err error
		metrics, err = interceptor.NewMetrics(reg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, aspect.WithInterceptor(metrics.Around))
	}
	registry := aspect.NewRegistry(opts...)
	if err := interceptor.Install(registry, interceptor.NewLogging(logger), metrics); err != nil {
		return nil, err
	}
	registry.Seal()
	return registry, nil
}

// invokeAll returns the operations that failed other than by design.
func invokeAll(ctx context.Context, e *example.Example, ops []string, out io.Writer) []string {
	var failed []string
	for _, name := range ops {
		result, err := e.Invoke(ctx, name)
		switch {
		case err == nil && result != nil:
			fmt.Fprintf(out, "%s: ok, returned %q\n", name, result)
		case err == nil:
			fmt.Fprintf(out, "%s: ok\n", name)
		case example.IsFailure(err):
			fmt.Fprintf(out, "%s: failed as declared (%s)\n", name, interceptor.ErrorType(err))
		default:
			fmt.Fprintf(out, "%s: error: %v\n", name, err)
			failed = append(failed, name)
		}
	}
	return failed
}

func metricsHandler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

func serveMetrics(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           metricsHandler(gatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("serving metrics, interrupt to exit", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve metrics")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
