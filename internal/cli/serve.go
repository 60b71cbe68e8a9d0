package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/daybook/internal/httpapi"
	"github.com/dmitrijs2005/daybook/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

func (a *App) newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the loopback JSON API",
		Long: `serve exposes entries, settings and snapshots under /api and Prometheus
metrics under /metrics. While a PIN is set, API calls must send it in the
X-Daybook-Pin header.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.ListenAddr = addr
			}
			ln, err := net.Listen("tcp", a.cfg.ListenAddr)
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			return a.serve(cmd.Context(), ln)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default 127.0.0.1:8765)")
	return cmd
}

// serve runs the API on ln until ctx is cancelled.
func (a *App) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler: httpapi.NewRouter(httpapi.Deps{
			Entries:  a.entries,
			Settings: a.settings,
			Snapshot: a.codec,
			Log:      a.log.With("component", "http"),
			Metrics:  metrics.Handler(a.registry),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info(ctx, "api listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.log.Info(ctx, "api stopped")
	return nil
}
