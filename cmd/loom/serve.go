package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/loom-ui/loom/pkg/driver"
	loommw "github.com/loom-ui/loom/pkg/middleware"
	"github.com/loom-ui/loom/pkg/remote"
	"github.com/loom-ui/loom/pkg/snapshot"
	"github.com/loom-ui/loom/pkg/vdom"
)

func serveCmd() *cobra.Command {
	var (
		addr        string
		queueSize   int
		snapshotDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo counter program to remote displays",
		Long: `Serve a demo counter program over WebSocket.

Each connected display gets its own program instance driven through the
full render, diff and patch cycle. Prometheus metrics are exposed on
/metrics.

Examples:
  loom serve
  loom serve --addr=:9000 --snapshot-dir=/tmp/loom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, queueSize, snapshotDir)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Address to listen on")
	cmd.Flags().IntVar(&queueSize, "queue-size", 64, "Per-display message queue capacity")
	cmd.Flags().StringVar(&snapshotDir, "snapshot-dir", "", "Directory for tree snapshots (disabled when empty)")

	return cmd
}

// counterModel is the demo program state.
type counterModel struct {
	count int
}

type incMsg struct{}
type decMsg struct{}

func counterProgram() driver.Program {
	return driver.Program{
		Init: func() any {
			return counterModel{}
		},
		Update: func(model any, msg vdom.Msg) any {
			m := model.(counterModel)
			switch msg.(type) {
			case incMsg:
				m.count++
			case decMsg:
				m.count--
			}
			return m
		},
		View: func(model any) *vdom.VNode {
			m := model.(counterModel)
			return vdom.Div(vdom.Class("counter"),
				vdom.Button(vdom.ID("dec"), vdom.On("click", vdom.Options{}, func(vdom.RawEvent) (vdom.Msg, error) {
					return decMsg{}, nil
				}), vdom.Text("-")),
				vdom.Span(vdom.Textf("%d", m.count)),
				vdom.Button(vdom.ID("inc"), vdom.On("click", vdom.Options{}, func(vdom.RawEvent) (vdom.Msg, error) {
					return incMsg{}, nil
				}), vdom.Text("+")),
			)
		},
	}
}

func runServe(addr string, queueSize int, snapshotDir string) error {
	logger := slog.Default()
	metrics := driver.NewMetrics(driver.MetricsConfig{})

	var store *snapshot.LocalStore
	if snapshotDir != "" {
		var err error
		store, err = snapshot.NewLocalStore(snapshotDir)
		if err != nil {
			return fmt.Errorf("snapshot dir: %w", err)
		}
		info("snapshots to %s", snapshotDir)
	}

	// Each display gets its own archiver under its own prefix, so concurrent
	// connections never share encoder state or overwrite each other's blobs.
	var displaySeq atomic.Uint64
	run := func(ctx context.Context, surface *remote.Surface) error {
		opts := []driver.Option{
			driver.WithQueueSize(queueSize),
			driver.WithMetrics(metrics),
		}
		if store != nil {
			prefix := fmt.Sprintf("displays/%d/", displaySeq.Add(1))
			opts = append(opts, driver.WithSnapshotter(snapshot.NewArchiver(store, snapshot.WithPrefix(prefix))))
		}
		d, err := driver.New(counterProgram(), surface, opts...)
		if err != nil {
			return err
		}
		return d.Run(ctx)
	}

	ws := remote.NewServer(run, remote.ServerConfig{Logger: logger})

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(loommw.Prometheus())
	r.Use(loommw.OpenTelemetry(loommw.WithRequestFilter(func(req *http.Request) bool {
		return req.URL.Path != "/metrics"
	})))
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/loom", ws.Router())

	srv := &http.Server{Addr: addr, Handler: r}

	printBanner()
	info("listening on %s", addr)
	info("websocket endpoint at ws://%s/loom/ws", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sig:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
