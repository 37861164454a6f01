package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/chainbourne/chainrelay/bus/chanbus"
	"github.com/chainbourne/chainrelay/code"
	"github.com/chainbourne/chainrelay/corr"
	"github.com/chainbourne/chainrelay/gateway"
	"github.com/chainbourne/chainrelay/gateway/netutil"
	"github.com/chainbourne/chainrelay/internal/config"
	"github.com/chainbourne/chainrelay/internal/obslog"
	"github.com/chainbourne/chainrelay/internal/telemetry"
	"github.com/chainbourne/chainrelay/methods"
	"github.com/chainbourne/chainrelay/wire"
)

// runServe wires the gateway's dependencies together and blocks serving
// HTTP until the process receives an interrupt.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log, err := obslog.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	metrics := telemetry.New()
	table := corr.New()

	b := chanbus.New(cfg.BusBuffer)
	defer b.Close()
	consumer := chanbus.NewConsumer(b, table, loopbackHandler)

	gw := gateway.New(&gateway.Config{
		Sender:         b,
		Table:          table,
		Registry:       methods.NewDefaultRegistry(),
		PublishTimeout: cfg.PublishTimeout,
		AllowOrigin:    cfg.AllowOrigin,
		Log:            log,
		Metrics:        metrics,
	})

	mux := http.NewServeMux()
	mux.Handle("/", gw)
	mux.Handle("/metrics", promhttp.Handler())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	go consumer.Run(ctx)

	ln, err := netutil.Listen(ctx, cfg.ListenAddr)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.PublishTimeout)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// loopbackHandler is the reference bus consumer wired in local/dev runs:
// it has no real chain node behind it, so it answers every request with a
// canned result carrying the request's own method name, letting someone
// stand the gateway up end to end without a live node.
func loopbackHandler(ctx context.Context, req *wire.Request) *wire.Response {
	result, err := structpb.NewValue(map[string]any{"method": req.Method, "status": "ok"})
	if err != nil {
		return &wire.Response{
			CorrelationID: req.CorrelationID,
			Code:          int32(code.SystemError),
			Message:       err.Error(),
		}
	}
	return &wire.Response{
		CorrelationID: req.CorrelationID,
		Result:        result,
	}
}
