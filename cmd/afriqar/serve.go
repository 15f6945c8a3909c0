package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"afriqar/internal/adapters/httpapi"
	"afriqar/internal/catalog"
	"afriqar/internal/content"
	"afriqar/internal/familytree"
	"afriqar/internal/metrics"
	"afriqar/internal/screen"
	"afriqar/internal/simulation"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// instrumentation picks the metrics recorder and the handlers exposing it.
func instrumentation(driver string) (rec metrics.Recorder, metricsHandler, varsHandler http.Handler) {
	switch driver {
	case "prometheus":
		p := metrics.NewPrometheusRecorder()
		return p, p.Handler(), nil
	case "expvar":
		return metrics.NewExpvarRecorder("afriqar"), nil, expvar.Handler()
	default:
		return metrics.Nop{}, nil, nil
	}
}

func serve(ctx context.Context) error {
	policy, err := simulation.ParsePolicy(cfg.Simulation.Policy)
	if err != nil {
		return err
	}
	rec, metricsHandler, varsHandler := instrumentation(cfg.Metrics.Driver)

	st, err := openStack(ctx, ctx, catalog.LoadOptions{Logger: logger, Metrics: rec})
	if err != nil {
		return err
	}
	defer closeQuietly(st)
	c := st.content

	screens := screen.NewRegistry(ctx, c.Registry, screen.Options{TTL: cfg.GetScreenTTL(), Logger: logger})
	sims := simulation.NewInstances(&simulation.Factory{
		Clock:      simulation.RealClock(),
		Policy:     policy,
		DNADelay:   cfg.GetDNADelay(),
		AudioDelay: cfg.GetAudioDelay(),
		AckReset:   cfg.GetAckReset(),
		Tribes:     c.Tribes,
		Dialects:   c.Dialects,
		Contact: func(ctx context.Context) (content.ContactDocument, error) {
			return content.LoadDocument[content.ContactDocument](ctx, st.docs, content.DocContact)
		},
		Logger:  logger,
		Metrics: rec,
	}, cfg.GetScreenTTL())
	trees := familytree.NewSessions(familytree.SessionOptions{TTL: cfg.GetScreenTTL(), Logger: logger})
	worker := httpapi.NewWorker(c.Registry, st.store, httpapi.WorkerOptions{
		QueueSize: cfg.Exports.QueueSize,
		Logger:    logger,
		Metrics:   rec,
	})
	worker.Start()

	handler := httpapi.NewHandler(c.Registry)
	handler.Documents = st.docs
	handler.Screens = screens
	handler.Simulations = sims
	handler.FamilyTree = trees
	handler.Exports = worker
	handler.Metrics = metricsHandler
	handler.Vars = varsHandler
	handler.Logger = logger

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.GetReadTimeout(),
		ReadHeaderTimeout: cfg.GetReadTimeout(),
		WriteTimeout:      cfg.GetWriteTimeout(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", server.Addr), zap.String("source", st.docs.Driver()))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		if err := c.Registry.Warm(gctx); err != nil {
			// Failed catalogs answer 503 until restart; the server keeps running.
			logger.Warn("catalog warm-up incomplete", zap.Error(err))
			return nil
		}
		logger.Info("catalogs warmed", zap.Duration("took", time.Since(start)))
		return nil
	})
	g.Go(func() error {
		screens.Run(gctx, cfg.GetReapInterval())
		return nil
	})
	g.Go(func() error {
		sims.Run(gctx, cfg.GetReapInterval())
		return nil
	})
	g.Go(func() error {
		trees.Run(gctx, cfg.GetReapInterval())
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
		defer cancel()
		logger.Info("shutting down")
		err := server.Shutdown(shutdownCtx)
		if stopErr := worker.Stop(shutdownCtx); stopErr != nil {
			logger.Warn("export worker did not stop", zap.Error(stopErr))
		}
		screens.Close()
		sims.Close()
		return err
	})
	return g.Wait()
}
