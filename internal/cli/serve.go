package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizmaster/internal/config"
	transport "quizmaster/internal/transport/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewServeCmd builds the subcommand that runs the presenter server.
func NewServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start the quiz presenter server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opts)
		},
	}
}

func runServer(ctx context.Context, opts *rootOptions) error {
	rt, err := openRuntime(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.Close()
	log := rt.log

	server := &http.Server{
		Addr:         ":" + rt.cfg.Server.Port,
		Handler:      transport.NewRouter(rt.service, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quizmaster", zap.String("addr", server.Addr), zap.String("store", rt.cfg.Store))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	timeout := config.TTLDuration(rt.cfg.Server.ShutdownTimeout, 5*time.Second)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
