package subscriber

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danyill/oscd-subscriber-lb-siemens/edit"
	"github.com/danyill/oscd-subscriber-lb-siemens/errors"
	"github.com/danyill/oscd-subscriber-lb-siemens/message"
	"github.com/danyill/oscd-subscriber-lb-siemens/metric"
	"github.com/danyill/oscd-subscriber-lb-siemens/scl"
	"github.com/danyill/oscd-subscriber-lb-siemens/siemens"
)

// siemensManufacturer is the IED manufacturer value the auto-wiring
// conventions apply to.
const siemensManufacturer = "SIEMENS"

// Bus is the publish/subscribe surface the adapter needs from the edit bus.
// natsclient.Client and testutil.Bus both satisfy it.
type Bus interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Subscribe(ctx context.Context, subject string, handler func(context.Context, []byte)) error
}

// Config holds the adapter's wiring.
type Config struct {
	Name               string
	Enabled            bool
	EventsSubject      string
	SubscribeSubject   string
	UnsubscribeSubject string
}

// Adapter consumes edit events and produces companion edit requests.
type Adapter struct {
	name    string
	enabled bool

	eventsSubject      string
	subscribeSubject   string
	unsubscribeSubject string

	doc      *scl.Document
	resolver *siemens.Resolver
	bus      Bus
	logger   *slog.Logger

	snapshots *edit.SnapshotStore
	metrics   *adapterMetrics

	// Lifecycle management
	running     bool
	startTime   time.Time
	mu          sync.RWMutex
	lifecycleMu sync.Mutex

	// Atomic counters for Health
	eventsProcessed int64
	intentsEmitted  int64
	errorCount      int64
}

// New creates an adapter over the given document mirror and bus. The
// metrics registry may be nil, which disables metrics.
func New(doc *scl.Document, bus Bus, cfg Config, logger *slog.Logger, registry *metric.Registry) (*Adapter, error) {
	if doc == nil {
		return nil, errors.WrapFatal(errors.ErrDocumentNotLoaded, "Adapter", "New", "document required")
	}
	if bus == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Adapter", "New", "bus required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Name == "" {
		cfg.Name = "siemens-subscriber"
	}

	metrics, err := newAdapterMetrics(registry)
	if err != nil {
		logger.Error("failed to initialize subscriber metrics", "error", err)
		metrics = nil // Continue without metrics
	}

	return &Adapter{
		name:               cfg.Name,
		enabled:            cfg.Enabled,
		eventsSubject:      cfg.EventsSubject,
		subscribeSubject:   cfg.SubscribeSubject,
		unsubscribeSubject: cfg.UnsubscribeSubject,
		doc:                doc,
		resolver:           siemens.NewResolver(doc, logger),
		bus:                bus,
		logger:             logger,
		snapshots:          edit.NewSnapshotStore(),
		metrics:            metrics,
	}, nil
}

// Start subscribes the adapter to the edit-event subject.
func (a *Adapter) Start(ctx context.Context) error {
	a.lifecycleMu.Lock()
	defer a.lifecycleMu.Unlock()

	if a.running {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "Adapter", "Start", "check running state")
	}

	if err := a.bus.Subscribe(ctx, a.eventsSubject, a.handleEvent); err != nil {
		return errors.WrapTransient(err, "Adapter", "Start", "subscribe to "+a.eventsSubject)
	}

	a.mu.Lock()
	a.running = true
	a.startTime = time.Now()
	a.mu.Unlock()

	a.logger.Info("subscriber adapter started",
		"component", a.name,
		"events_subject", a.eventsSubject,
		"enabled", a.enabled)
	return nil
}

// Stop marks the adapter stopped. Cycles run synchronously inside bus
// delivery, so there is nothing to drain.
func (a *Adapter) Stop(time.Duration) error {
	a.lifecycleMu.Lock()
	defer a.lifecycleMu.Unlock()

	a.mu.Lock()
	a.running = false
	a.mu.Unlock()
	return nil
}

// SnapshotCount reports the number of snapshots currently held. It is zero
// between cycles; anything else indicates a leak.
func (a *Adapter) SnapshotCount() int {
	return a.snapshots.Len()
}

// handleEvent processes one edit notification from the host.
func (a *Adapter) handleEvent(ctx context.Context, data []byte) {
	atomic.AddInt64(&a.eventsProcessed, 1)

	ev, err := message.DecodeEditEvent(data)
	if err != nil {
		atomic.AddInt64(&a.errorCount, 1)
		a.metrics.recordError(a.name, "decode")
		a.logger.Debug("failed to decode edit event",
			"component", a.name,
			"error", err)
		return
	}

	a.runCycle(ctx, edit.Flatten(ev.Edits))
}

// runCycle executes one notification cycle: capture pre-edit snapshots,
// apply the updates to the mirror, infer companions, dispatch. The snapshot
// store is cleared whatever branch is taken.
func (a *Adapter) runCycle(ctx context.Context, records []*edit.Record) {
	defer a.snapshots.Clear()

	a.metrics.recordCycle(a.name)

	if !a.enabled {
		a.applyRecords(records)
		return
	}

	// Capture phase: pre-edit state of every ExtRef update, keyed by batch
	// position. Runs strictly before any update is applied.
	for i, rec := range records {
		if rec.Kind != edit.KindUpdate {
			continue
		}
		n := a.doc.NodeAt(rec.Element)
		if n == nil || n.Tag != "ExtRef" {
			continue
		}
		a.snapshots.Put(i, edit.NewSnapshot(n.CloneAttrs()))
	}

	a.applyRecords(records)

	// Inference phase: snapshots are consumed exactly once, in batch order.
	for i, rec := range records {
		snapshot, ok := a.snapshots.Take(i)
		if !ok {
			continue
		}
		n := a.doc.NodeAt(rec.Element)
		if n == nil {
			continue
		}
		if !isSiemensRef(n) {
			a.metrics.recordSkip(a.name, "vendor")
			continue
		}

		start := time.Now()
		intents := a.resolver.Resolve(scl.ExtRef{El: n}, snapshot, edit.RecordFlags(rec))
		a.metrics.recordResolve(a.name, time.Since(start))

		if len(intents) == 0 {
			a.metrics.recordSkip(a.name, "no_companions")
			continue
		}
		a.dispatch(ctx, intents)
	}
}

// applyRecords applies attribute updates to the mirror document. Insert and
// remove records pass through untouched; the mirror's structure is fixed.
func (a *Adapter) applyRecords(records []*edit.Record) {
	for _, rec := range records {
		if rec.Kind != edit.KindUpdate {
			continue
		}
		n := a.doc.NodeAt(rec.Element)
		if n == nil {
			continue
		}
		for name, value := range rec.Attrs {
			if value == nil {
				n.RemoveAttr(name)
			} else {
				n.SetAttr(name, *value)
			}
		}
	}
}

// dispatch publishes one edit request per intent.
func (a *Adapter) dispatch(ctx context.Context, intents []edit.Intent) {
	for _, intent := range intents {
		var (
			subject string
			data    []byte
			err     error
		)

		switch intent.Action {
		case edit.ActionSubscribe:
			req := message.NewSubscribeRequest(
				intent.Target.Ordinal(),
				intent.Source.Ordinal(),
				intent.Control.Ordinal(),
			)
			req.IgnoreSupervision = intent.IgnoreSupervision
			req.CheckOnlyPreferredBasicType = intent.CheckOnlyPreferredBasicType
			subject = a.subscribeSubject
			data, err = req.Encode()
		case edit.ActionUnsubscribe:
			req := message.NewUnsubscribeRequest(intent.Target.Ordinal())
			req.IgnoreSupervision = intent.IgnoreSupervision
			subject = a.unsubscribeSubject
			data, err = req.Encode()
		default:
			continue
		}

		if err != nil {
			atomic.AddInt64(&a.errorCount, 1)
			a.metrics.recordError(a.name, "encode")
			continue
		}

		if err := a.bus.Publish(ctx, subject, data); err != nil {
			atomic.AddInt64(&a.errorCount, 1)
			a.metrics.recordError(a.name, "publish")
			a.logger.Error("failed to publish edit request",
				"component", a.name,
				"subject", subject,
				"error", err)
			continue
		}

		atomic.AddInt64(&a.intentsEmitted, 1)
		a.metrics.recordIntent(a.name, intent.Action.String())
	}
}

// isSiemensRef reports whether the reference belongs to a Siemens IED.
func isSiemensRef(n *scl.Node) bool {
	ied := n.AncestorByTag("IED")
	return ied != nil && ied.Attr("manufacturer") == siemensManufacturer
}

// Health summarises the adapter's runtime state.
type Health struct {
	Healthy         bool
	Uptime          time.Duration
	EventsProcessed int64
	IntentsEmitted  int64
	ErrorCount      int64
}

// Health returns the adapter's current health status.
func (a *Adapter) Health() Health {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return Health{
		Healthy:         a.running,
		Uptime:          time.Since(a.startTime),
		EventsProcessed: atomic.LoadInt64(&a.eventsProcessed),
		IntentsEmitted:  atomic.LoadInt64(&a.intentsEmitted),
		ErrorCount:      atomic.LoadInt64(&a.errorCount),
	}
}
