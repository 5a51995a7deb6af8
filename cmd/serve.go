package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/fc-shift-sim/internal/observer"
	"github.com/inference-sim/fc-shift-sim/sim/control"
)

var (
	serveAddr  string // HTTP listen address
	serveSpeed int    // Initial speed multiplier
)

// serveCmd runs the wall-clock loop behind the observer endpoint
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a live shift over websocket for an external UI",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		ctl, err := newController()
		if err != nil {
			logrus.Fatalf("unable to set up shift: %v", err)
		}
		ctl.SetSpeed(serveSpeed)

		obs := observer.NewServer(ctl)
		runner := control.NewRunner(ctl, control.BaseTickInterval)
		runner.OnTick = obs.Publish

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := &http.Server{Addr: serveAddr, Handler: obs.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		go func() {
			_ = runner.Run(ctx)
		}()

		logrus.Warnf("Serving %s on http://%s (GET /api/snapshot, GET /ws)", ctl.Snapshot().ScenarioID, serveAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("observer server: %v", err)
		}
		logrus.Info("Server stopped.")
	},
}
