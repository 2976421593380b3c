// Command gateway runs the Teltonika TCP gateway: it accepts device
// connections, decodes AVL telemetry, forwards it to a storage sink,
// and exposes a loopback HTTP surface for enqueueing commands and
// reporting device presence and health.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/teltonika-gw/gateway/command"
	"github.com/teltonika-gw/gateway/control"
	"github.com/teltonika-gw/gateway/gwconfig"
	"github.com/teltonika-gw/gateway/iodict"
	"github.com/teltonika-gw/gateway/metrics"
	"github.com/teltonika-gw/gateway/normalize"
	"github.com/teltonika-gw/gateway/registry"
	"github.com/teltonika-gw/gateway/session"
	"github.com/teltonika-gw/gateway/sink"
)

// appFlags is the full set of flags the gateway binary accepts; every
// flag except -dev doubles as an environment variable.
func appFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "listen-addr", Value: "0.0.0.0:5000", EnvVars: []string{"GATEWAY_LISTEN_ADDR"}},
		&cli.StringFlag{Name: "control-addr", Value: "0.0.0.0:5001", EnvVars: []string{"GATEWAY_CONTROL_ADDR"}},
		&cli.IntFlag{Name: "max-connections", Value: 100, EnvVars: []string{"GATEWAY_MAX_CONNECTIONS"}},
		&cli.DurationFlag{Name: "read-idle-timeout", Value: 120 * time.Second, EnvVars: []string{"GATEWAY_READ_IDLE_TIMEOUT"}},
		&cli.DurationFlag{Name: "write-timeout", Value: 30 * time.Second, EnvVars: []string{"GATEWAY_WRITE_TIMEOUT"}},
		&cli.DurationFlag{Name: "response-timeout", Value: 15 * time.Second, EnvVars: []string{"GATEWAY_RESPONSE_TIMEOUT"}},
		&cli.IntFlag{Name: "max-retries", Value: 3, EnvVars: []string{"GATEWAY_MAX_RETRIES"}},
		&cli.StringFlag{Name: "can-adapter-family", Value: string(iodict.FamilyFMB), EnvVars: []string{"GATEWAY_CAN_ADAPTER_FAMILY"}},
		&cli.StringFlag{Name: "sink-url", Required: true, EnvVars: []string{"GATEWAY_SINK_URL"}},
		&cli.StringFlag{Name: "sink-token", EnvVars: []string{"GATEWAY_SINK_TOKEN"}},
		&cli.IntFlag{Name: "sink-batch-size", Value: 50, EnvVars: []string{"GATEWAY_SINK_BATCH_SIZE"}},
		&cli.DurationFlag{Name: "sink-batch-timeout", Value: 5 * time.Second, EnvVars: []string{"GATEWAY_SINK_BATCH_TIMEOUT"}},
		&cli.IntFlag{Name: "sink-queue-capacity", Value: 1000, EnvVars: []string{"GATEWAY_SINK_QUEUE_CAPACITY"}},
		&cli.StringFlag{Name: "log-dir", EnvVars: []string{"GATEWAY_LOG_DIR"}},
		&cli.BoolFlag{Name: "dev", Usage: "use a human-readable development log encoder instead of JSON"},
	}
}

func main() {
	app := &cli.App{
		Name:   "gateway",
		Usage:  "Teltonika TCP telematics gateway",
		Flags:  appFlags(),
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "gateway:", err)
		os.Exit(1)
	}
}

// configFromContext builds a Config from parsed CLI flags. It does not
// call Validate — callers decide when defaults get filled in so the
// flag-parsing path stays testable independent of process startup.
func configFromContext(c *cli.Context) gwconfig.Config {
	return gwconfig.Config{
		ListenAddr:        c.String("listen-addr"),
		ControlAddr:       c.String("control-addr"),
		MaxConnections:    c.Int("max-connections"),
		ReadIdleTimeout:   c.Duration("read-idle-timeout"),
		WriteTimeout:      c.Duration("write-timeout"),
		ResponseTimeout:   c.Duration("response-timeout"),
		MaxRetries:        c.Int("max-retries"),
		CanAdapterFamily:  iodict.CanAdapterFamily(c.String("can-adapter-family")),
		SinkURL:           c.String("sink-url"),
		SinkToken:         c.String("sink-token"),
		SinkBatchSize:     c.Int("sink-batch-size"),
		SinkBatchTimeout:  c.Duration("sink-batch-timeout"),
		SinkQueueCapacity: c.Int("sink-queue-capacity"),
		LogDir:            c.String("log-dir"),
	}
}

func run(c *cli.Context) error {
	cfg := configFromContext(c)
	if err := cfg.Validate(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	log, err := newLogger(c.Bool("dev"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer log.Sync()

	m := metrics.New()
	reg := registry.New()
	sinkClient := sink.New(cfg.SinkURL, cfg.SinkToken, cfg.SinkQueueCapacity, cfg.SinkBatchSize, cfg.SinkBatchTimeout, m, log.Named("sink"))
	orch := command.New(reg, m, cfg.ResponseTimeout, cfg.MaxRetries)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sinkClient.Run(ctx)

	cb := session.Callbacks{
		OnAuthenticated: func(imei string) {
			m.ConnectedDevices.Inc()
			orch.DrainForIMEI(imei)
			peerAddr := ""
			if entry, ok := reg.Lookup(imei); ok {
				peerAddr = entry.PeerAddr
			}
			sinkClient.NotifyDeviceStatus(ctx, imei, true, peerAddr)
		},
		OnRecord: func(imei string, rec normalize.Record) {
			m.FramesDecoded.Inc()
			sinkClient.Submit(sink.ToRecord(imei, rec))
		},
		OnCommandResponse: func(imei string, responseText string) {
			orch.Deliver(imei, responseText)
		},
		OnDisconnected: func(imei string) {
			m.ConnectedDevices.Dec()
			sinkClient.NotifyDeviceStatus(ctx, imei, false, "")
		},
	}

	acc, err := newAcceptor(cfg, reg, cb, m, log.Named("acceptor"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("gateway: bind %s: %v", cfg.ListenAddr, err), 1)
	}
	go acc.serve()
	log.Info("tcp acceptor listening", zap.String("addr", cfg.ListenAddr))

	controlSrv := control.New(orch, reg, m, log.Named("control"))
	httpSrv := &http.Server{Addr: cfg.ControlAddr, Handler: controlSrv}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("control http server stopped", zap.Error(err))
		}
	}()
	log.Info("control http listening", zap.String("addr", cfg.ControlAddr))

	timeoutTicker := time.NewTicker(cfg.ResponseTimeout)
	defer timeoutTicker.Stop()
	go func() {
		for {
			select {
			case t := <-timeoutTicker.C:
				orch.CheckTimeouts(t)
				orch.RetryEligible()
			case <-ctx.Done():
				return
			}
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals
	log.Info("received shutdown signal", zap.String("signal", sig.String()))

	acc.Close()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.WriteTimeout)
	defer shutdownCancel()
	httpSrv.Shutdown(shutdownCtx)

	cancel()
	sinkClient.Stop()

	return nil
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
