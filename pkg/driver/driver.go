// Package driver owns the update cycle. The engine's diff and patch steps
// assume serialized cycles; the driver provides that serialization with a
// single goroutine pulling messages from a bounded FIFO queue, so programs
// never touch a mutex.
package driver

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	loomerr "github.com/loom-ui/loom/internal/errors"
	"github.com/loom-ui/loom/pkg/host"
	"github.com/loom-ui/loom/pkg/render"
	"github.com/loom-ui/loom/pkg/vdom"
)

const defaultTracerName = "loom"

// Program is a model-view program driven by the event loop. Update and View
// are called only from the driver goroutine; they must not retain or mutate
// the trees they return after returning them.
type Program struct {
	// Init returns the initial model.
	Init func() any

	// Update folds a message into the model and returns the next model.
	Update func(model any, msg vdom.Msg) any

	// View builds the tree for a model. Required.
	View func(model any) *vdom.VNode
}

// Snapshotter receives the realized tree after each cycle. Called from the
// driver goroutine; implementations decide whether and where to persist.
type Snapshotter interface {
	Snapshot(ctx context.Context, seq uint64, tree *vdom.VNode) error
}

// Option configures a Driver.
type Option func(*Driver)

// WithQueueSize sets the message queue capacity (default 64).
func WithQueueSize(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.queueSize = n
		}
	}
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(d *Driver) { d.metrics = m }
}

// WithTracerProvider sets the tracer provider for per-cycle spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(d *Driver) { d.tracer = tp.Tracer(defaultTracerName) }
}

// WithErrorHandler sets the sink for decode errors and non-fatal cycle
// errors. Defaults to slog.Error.
func WithErrorHandler(fn func(error)) Option {
	return func(d *Driver) { d.onError = fn }
}

// WithSnapshotter attaches a per-cycle tree snapshotter.
func WithSnapshotter(s Snapshotter) Option {
	return func(d *Driver) { d.snapshotter = s }
}

// Driver runs a Program against a host surface. All rendering, diffing and
// patching happens on the goroutine inside Run.
type Driver struct {
	program Program
	surface host.Surface

	queueSize   int
	metrics     *Metrics
	tracer      trace.Tracer
	onError     func(error)
	snapshotter Snapshotter

	queue   chan vdom.Msg
	dropped atomic.Int64
	seq     atomic.Uint64

	renderer *render.Renderer
	patcher  *render.Patcher
}

// New creates a Driver for program on surface.
func New(program Program, surface host.Surface, opts ...Option) (*Driver, error) {
	if program.View == nil {
		return nil, loomerr.New(loomerr.CodeConstruction).Withf("program has no View")
	}
	d := &Driver{
		program:   program,
		surface:   surface,
		queueSize: 64,
		tracer:    otel.Tracer(defaultTracerName),
		onError: func(err error) {
			slog.Error("cycle error", "error", err)
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.queue = make(chan vdom.Msg, d.queueSize)

	d.renderer = render.NewRenderer(render.Config{
		Surface:  surface,
		Messages: render.MessageSinkFunc(d.Enqueue),
		Errors: func(err error) {
			d.metrics.decodeError()
			d.onError(err)
		},
	})
	d.patcher = render.NewPatcher(d.renderer)
	return d, nil
}

// Enqueue queues a message for the next cycle without blocking. When the
// queue is full the message is dropped and counted; display events are
// best-effort, a stalled program must not stall the host.
func (d *Driver) Enqueue(msg vdom.Msg) {
	select {
	case d.queue <- msg:
		d.metrics.queued(1)
	default:
		d.dropped.Add(1)
		d.metrics.dropped()
	}
}

// Dropped returns the number of messages dropped due to a full queue.
func (d *Driver) Dropped() int64 {
	return d.dropped.Load()
}

// Seq returns the number of completed cycles, including the mount.
func (d *Driver) Seq() uint64 {
	return d.seq.Load()
}

// Run mounts the initial view and processes messages until ctx is
// cancelled. Fatal patch errors stop the loop; everything else is reported
// to the error handler and the loop continues with the model unchanged.
func (d *Driver) Run(ctx context.Context) error {
	var model any
	if d.program.Init != nil {
		model = d.program.Init()
	}

	tree := d.program.View(model)
	live, err := d.renderer.Mount(tree)
	if err != nil {
		return err
	}
	d.flush()
	d.seq.Add(1)
	d.snapshot(ctx, tree)

	for {
		select {
		case <-ctx.Done():
			d.renderer.Destroy(live)
			d.flush()
			return loomerr.New(loomerr.CodeDriverStopped).Wrap(ctx.Err())

		case msg := <-d.queue:
			d.metrics.queued(-1)
			model, tree, live, err = d.cycle(ctx, model, tree, live, msg)
			if err != nil {
				if loomerr.IsFatal(err) {
					d.renderer.Destroy(live)
					d.flush()
					return err
				}
				d.onError(err)
			}
		}
	}
}

// cycle runs one update: fold the message, build the next tree, diff, patch,
// flush. The returned live root may differ when the patch replaced the root.
func (d *Driver) cycle(ctx context.Context, model any, tree *vdom.VNode, live *render.LiveNode, msg vdom.Msg) (any, *vdom.VNode, *render.LiveNode, error) {
	ctx, span := d.tracer.Start(ctx, "loom.cycle")
	defer span.End()
	start := time.Now()

	next := model
	if d.program.Update != nil {
		next = d.program.Update(model, msg)
	}
	newTree := d.program.View(next)

	patch := vdom.Diff(tree, newTree)
	span.SetAttributes(
		attribute.Int("loom.patch.ops", patch.Len()),
		attribute.Int64("loom.cycle.seq", int64(d.seq.Load())),
	)

	newLive, err := d.patcher.Apply(live, patch)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		if loomerr.IsFatal(err) {
			return next, tree, live, err
		}
		if stderrors.Is(err, loomerr.New(loomerr.CodePatchAborted)) {
			// The batch stopped mid-mutation, so the display no longer
			// matches either tree. Remount the previous view to get back to
			// a known state before the next cycle.
			restored, rerr := d.restore(newLive, tree)
			if rerr != nil {
				return next, tree, restored, rerr
			}
			return next, tree, restored, err
		}
		// Validation and pre-render failures leave the tree untouched; keep
		// the old view for the next cycle.
		return next, tree, live, err
	}
	d.flush()

	d.metrics.cycle(patch.Len(), time.Since(start).Seconds())
	d.seq.Add(1)
	d.snapshot(ctx, newTree)
	return next, newTree, newLive, nil
}

// restore tears down a half-patched live tree and re-renders the last tree
// that was fully applied. A failure here is fatal: the surface state is
// unknown and there is nothing left to fall back to.
func (d *Driver) restore(live *render.LiveNode, tree *vdom.VNode) (*render.LiveNode, error) {
	d.renderer.Destroy(live)
	restored, err := d.renderer.Mount(tree)
	if err != nil {
		return nil, loomerr.New(loomerr.CodeRestoreFailed).Wrap(err)
	}
	d.flush()
	return restored, nil
}

// flush pushes buffered ops to surfaces that batch, such as remote displays.
func (d *Driver) flush() {
	if f, ok := d.surface.(host.Flusher); ok {
		if err := f.Flush(); err != nil {
			d.onError(err)
		}
	}
}

func (d *Driver) snapshot(ctx context.Context, tree *vdom.VNode) {
	if d.snapshotter == nil {
		return
	}
	if err := d.snapshotter.Snapshot(ctx, d.seq.Load(), tree); err != nil {
		d.onError(loomerr.FromError(err, loomerr.CodeSnapshotStore))
	}
}
