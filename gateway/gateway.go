package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/danyill/oscd-subscriber-lb-siemens/errors"
	"github.com/danyill/oscd-subscriber-lb-siemens/message"
	"github.com/danyill/oscd-subscriber-lb-siemens/metric"
)

// Publisher is the bus surface the gateway needs. natsclient.Client and
// testutil.Bus both satisfy it.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Config holds the gateway's listen address and forwarding target.
type Config struct {
	Listen        string  // HTTP listen address, e.g. ":8080"
	Path          string  // WebSocket endpoint path, e.g. "/edits"
	EventsSubject string  // bus subject edit events are forwarded to
	EventRate     float64 // sustained events per second per connection
	EventBurst    int     // burst allowance per connection
}

// Gateway accepts WebSocket connections from the host editor and forwards
// edit events to the bus.
type Gateway struct {
	config   Config
	bus      Publisher
	logger   *slog.Logger
	upgrader websocket.Upgrader

	httpServer *http.Server
	conns      map[*websocket.Conn]struct{}
	connsMu    sync.Mutex

	shutdown     chan struct{}
	shutdownOnce sync.Once
	started      atomic.Bool
	startTime    time.Time
	wg           sync.WaitGroup
	lifecycleMu  sync.Mutex

	eventsForwarded int64
	eventsDropped   int64
	errorCount      atomic.Int64

	metrics *gatewayMetrics
}

// gatewayMetrics holds Prometheus metrics for the gateway.
type gatewayMetrics struct {
	eventsForwarded prometheus.Counter
	eventsDropped   *prometheus.CounterVec // by reason
	connsActive     prometheus.Gauge
	connsTotal      prometheus.Counter
}

func newGatewayMetrics(registry *metric.Registry) (*gatewayMetrics, error) {
	if registry == nil {
		return nil, nil
	}

	m := &gatewayMetrics{
		eventsForwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sclsub",
			Subsystem: "gateway",
			Name:      "events_forwarded_total",
			Help:      "Total edit events forwarded to the bus",
		}),
		eventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sclsub",
			Subsystem: "gateway",
			Name:      "events_dropped_total",
			Help:      "Total edit events dropped before forwarding",
		}, []string{"reason"}), // reason: rate_limited, invalid, publish_failed

		connsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sclsub",
			Subsystem: "gateway",
			Name:      "connections_active",
			Help:      "Number of active WebSocket connections",
		}),
		connsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sclsub",
			Subsystem: "gateway",
			Name:      "connections_total",
			Help:      "Total number of WebSocket connections accepted",
		}),
	}

	if err := registry.Register("gateway", "events_forwarded_total", m.eventsForwarded); err != nil {
		return nil, err
	}
	if err := registry.Register("gateway", "events_dropped_total", m.eventsDropped); err != nil {
		return nil, err
	}
	if err := registry.Register("gateway", "connections_active", m.connsActive); err != nil {
		return nil, err
	}
	if err := registry.Register("gateway", "connections_total", m.connsTotal); err != nil {
		return nil, err
	}

	return m, nil
}

// New creates a gateway. The metrics registry may be nil, which disables
// metrics.
func New(bus Publisher, cfg Config, logger *slog.Logger, registry *metric.Registry) (*Gateway, error) {
	if bus == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Gateway", "New", "bus required")
	}
	if cfg.Listen == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Gateway", "New", "listen address required")
	}
	if cfg.Path == "" {
		cfg.Path = "/edits"
	}
	if cfg.EventRate <= 0 {
		cfg.EventRate = 100
	}
	if cfg.EventBurst <= 0 {
		cfg.EventBurst = 2 * int(cfg.EventRate)
	}
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := newGatewayMetrics(registry)
	if err != nil {
		logger.Error("failed to initialize gateway metrics", "error", err)
		metrics = nil
	}

	return &Gateway{
		config: cfg,
		bus:    bus,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(*http.Request) bool {
				// The host editor runs on the operator's own machine.
				return true
			},
		},
		conns:    make(map[*websocket.Conn]struct{}),
		shutdown: make(chan struct{}),
		metrics:  metrics,
	}, nil
}

// Start begins listening for WebSocket connections.
func (g *Gateway) Start(ctx context.Context) error {
	g.lifecycleMu.Lock()
	defer g.lifecycleMu.Unlock()

	if g.started.Load() {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "Gateway", "Start", "check started state")
	}

	mux := http.NewServeMux()
	mux.HandleFunc(g.config.Path, func(w http.ResponseWriter, r *http.Request) {
		g.handleWebSocket(ctx, w, r)
	})

	g.httpServer = &http.Server{
		Addr:              g.config.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", g.config.Listen)
	if err != nil {
		return errors.WrapTransient(err, "Gateway", "Start", "listen on "+g.config.Listen)
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if err := g.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			g.errorCount.Add(1)
			g.logger.Error("gateway server failed", "error", err)
		}
	}()

	g.startTime = time.Now()
	g.started.Store(true)
	g.logger.Info("gateway started",
		"listen", g.config.Listen,
		"path", g.config.Path,
		"events_subject", g.config.EventsSubject)
	return nil
}

// Stop shuts the server down and closes all connections.
func (g *Gateway) Stop(timeout time.Duration) error {
	g.lifecycleMu.Lock()
	defer g.lifecycleMu.Unlock()

	if !g.started.Load() {
		return nil
	}

	g.shutdownOnce.Do(func() {
		close(g.shutdown)
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if g.httpServer != nil {
		_ = g.httpServer.Shutdown(ctx)
	}

	g.connsMu.Lock()
	for conn := range g.conns {
		conn.Close()
	}
	g.conns = make(map[*websocket.Conn]struct{})
	g.connsMu.Unlock()

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		g.started.Store(false)
		return errors.WrapTransient(
			fmt.Errorf("shutdown timeout after %v", timeout),
			"Gateway", "Stop", "wait for connection handlers")
	}

	g.started.Store(false)
	return nil
}

// handleWebSocket upgrades the request and reads edit events until the
// connection closes.
func (g *Gateway) handleWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.errorCount.Add(1)
		return
	}

	g.connsMu.Lock()
	g.conns[conn] = struct{}{}
	g.connsMu.Unlock()

	if g.metrics != nil {
		g.metrics.connsActive.Inc()
		g.metrics.connsTotal.Inc()
	}

	g.wg.Add(1)
	go g.readLoop(ctx, conn)
}

// readLoop consumes frames from one connection. Each frame must decode as an
// edit event; valid events pass a per-connection rate limiter before being
// forwarded to the bus verbatim.
func (g *Gateway) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer g.wg.Done()
	defer func() {
		conn.Close()
		g.connsMu.Lock()
		delete(g.conns, conn)
		g.connsMu.Unlock()
		if g.metrics != nil {
			g.metrics.connsActive.Dec()
		}
	}()

	limiter := rate.NewLimiter(rate.Limit(g.config.EventRate), g.config.EventBurst)

	for {
		select {
		case <-g.shutdown:
			return
		case <-ctx.Done():
			return
		default:
			conn.SetReadDeadline(time.Now().Add(1 * time.Second))

			_, data, err := conn.ReadMessage()
			if err != nil {
				if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
					continue
				}
				return
			}

			g.forward(ctx, limiter, data)
		}
	}
}

// forward validates one frame and publishes it to the events subject.
func (g *Gateway) forward(ctx context.Context, limiter *rate.Limiter, data []byte) {
	if _, err := message.DecodeEditEvent(data); err != nil {
		g.drop("invalid")
		g.logger.Debug("rejected malformed edit event", "error", err)
		return
	}

	if !limiter.Allow() {
		g.drop("rate_limited")
		return
	}

	if err := g.bus.Publish(ctx, g.config.EventsSubject, data); err != nil {
		g.drop("publish_failed")
		g.errorCount.Add(1)
		g.logger.Error("failed to forward edit event",
			"subject", g.config.EventsSubject,
			"error", err)
		return
	}

	atomic.AddInt64(&g.eventsForwarded, 1)
	if g.metrics != nil {
		g.metrics.eventsForwarded.Inc()
	}
}

func (g *Gateway) drop(reason string) {
	atomic.AddInt64(&g.eventsDropped, 1)
	if g.metrics != nil {
		g.metrics.eventsDropped.WithLabelValues(reason).Inc()
	}
}

// Health summarises the gateway's runtime state.
type Health struct {
	Healthy         bool
	Uptime          time.Duration
	EventsForwarded int64
	EventsDropped   int64
	ErrorCount      int64
}

// Health returns the gateway's current health status.
func (g *Gateway) Health() Health {
	uptime := time.Duration(0)
	if g.started.Load() && !g.startTime.IsZero() {
		uptime = time.Since(g.startTime)
	}
	return Health{
		Healthy:         g.started.Load(),
		Uptime:          uptime,
		EventsForwarded: atomic.LoadInt64(&g.eventsForwarded),
		EventsDropped:   atomic.LoadInt64(&g.eventsDropped),
		ErrorCount:      g.errorCount.Load(),
	}
}
