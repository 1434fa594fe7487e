package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/CherkashinEvgeny/goadvice/internal/config"
)

type rootOptions struct {
	configPath  string
	logLevel    string
	logFormat   string
	metricsAddr string
}

// NewRootCommand builds the goadvice command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "goadvice",
		Short: "Route calls through marker-bound advice",
		Long: `goadvice binds one advice per interception marker (before, after, around,
afterThrowing, afterReturning) and invokes the example operations through them.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format (text, json)")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address after running")

	root.AddCommand(newRunCommand(opts), newMarkersCommand())
	return root
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

func (o *rootOptions) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.Metrics.Addr = o.metricsAddr
	}
	return cfg, cfg.Validate()
}
