// Command afriqar serves the heritage catalogs over HTTP and queries them
// from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"afriqar/internal/blob"
	"afriqar/internal/catalog"
	"afriqar/internal/config"
	"afriqar/internal/content"
	"afriqar/internal/logging"
	"afriqar/internal/source"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "afriqar",
		Short:         "African heritage catalogs, screens and simulations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			cfg = loaded
			logger, err = logging.New(logging.Options{
				Level:   cfg.Logging.Level,
				Format:  cfg.Logging.Format,
				Verbose: verbose,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("AFRIQAR_CONFIG"), "path to the YAML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newServeCmd(), newQueryCmd(), newSeedCmd(), newSimulateCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// stack is the catalog side of the application shared by every command.
type stack struct {
	store   blob.Store
	docs    source.Source
	content *content.Catalogs
}

// openStack opens the blob store, the document source and the catalogs
// bound to base. The blob store is optional unless the source or an export
// needs it.
func openStack(ctx, base context.Context, opts catalog.LoadOptions) (*stack, error) {
	store, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	docs, err := source.Open(ctx, cfg.Source, store)
	if err != nil {
		return nil, fmt.Errorf("open %s source: %w", cfg.Source.Driver, err)
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	c, err := content.Build(base, docs, opts)
	if err != nil {
		_ = docs.Close()
		return nil, err
	}
	logger.Debug("catalogs ready", zap.String("source", docs.Driver()), zap.String("blob", string(store.Driver())))
	return &stack{store: store, docs: docs, content: c}, nil
}

func (s *stack) Close() error {
	return s.docs.Close()
}

func closeQuietly(c io.Closer) { _ = c.Close() }
