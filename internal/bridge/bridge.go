package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/AryaMajumder/px4-jmavsim/internal/observability"
)

var (
	// ErrInvalidConfig indicates the bridge config failed validation.
	ErrInvalidConfig = errors.New("bridge: invalid config")
	// ErrConnectFailed indicates the initial broker connection did not come up.
	ErrConnectFailed = errors.New("bridge: broker connect failed")
)

// maxDatagram is sized for the largest UDP payload we can receive.
const maxDatagram = 64 * 1024

// TLSConfig selects TLS for the broker connection and names the PEM files.
type TLSConfig struct {
	Enabled  bool
	CAFile   string
	CertFile string
	KeyFile  string
	Insecure bool
}

// Config carries everything the bridge needs to run.
type Config struct {
	ListenAddr   string
	BrokerHost   string
	BrokerPort   int
	ClientID     string
	Topic        string
	Username     string
	PasswordFile string
	QoS          byte
	TLS          TLSConfig

	// QueueSize bounds the ingest buffer; when full the oldest frame is
	// dropped so fresh telemetry keeps flowing.
	QueueSize int
	// MaxRate caps publishes per second. Zero disables the limit.
	MaxRate float64

	// MetricsAddr, when set, serves Prometheus metrics on /metrics.
	MetricsAddr string
}

// DefaultConfig returns the bridge defaults. The listen address is the
// second telemetry endpoint that the boot-script patch adds.
func DefaultConfig() Config {
	return Config{
		ListenAddr: "127.0.0.1:14551",
		BrokerHost: "localhost",
		BrokerPort: 1883,
		ClientID:   "px4-telemetry-bridge",
		Topic:      "drone/telemetry",
		QoS:        1,
		QueueSize:  200,
		MaxRate:    5,
	}
}

func (c Config) validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("%w: missing listen address", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.BrokerHost) == "" {
		return fmt.Errorf("%w: missing broker host", ErrInvalidConfig)
	}
	if c.BrokerPort <= 0 || c.BrokerPort > 65535 {
		return fmt.Errorf("%w: broker port %d out of range", ErrInvalidConfig, c.BrokerPort)
	}
	if strings.TrimSpace(c.Topic) == "" {
		return fmt.Errorf("%w: missing topic", ErrInvalidConfig)
	}
	if c.QoS > 2 {
		return fmt.Errorf("%w: qos must be 0, 1, or 2", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue size must be positive", ErrInvalidConfig)
	}
	if c.MaxRate < 0 {
		return fmt.Errorf("%w: max rate cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// frame is one datagram taken off the wire.
type frame struct {
	payload    []byte
	receivedAt time.Time
}

// Bridge owns the UDP listener, the frame queue and the broker session.
type Bridge struct {
	cfg    Config
	queue  chan frame
	minGap time.Duration

	// publish sends one encoded envelope to the broker. Run wires the MQTT
	// client in when nil.
	publish func(payload []byte) error
	now     func() time.Time

	seq     uint64
	lastPub time.Time
}

// New validates cfg and builds a Bridge. The broker is not contacted until
// Run.
func New(cfg Config) (*Bridge, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	b := &Bridge{
		cfg:   cfg,
		queue: make(chan frame, cfg.QueueSize),
		now:   time.Now,
	}
	if cfg.MaxRate > 0 {
		b.minGap = time.Duration(float64(time.Second) / cfg.MaxRate)
	}
	return b, nil
}

// Run binds the UDP endpoint, connects to the broker and relays frames until
// ctx is cancelled. A clean cancellation returns nil.
func (b *Bridge) Run(ctx context.Context) error {
	conn, err := net.ListenPacket("udp", b.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("bridge: bind %s: %w", b.cfg.ListenAddr, err)
	}
	defer conn.Close()

	if b.publish == nil {
		client, err := connectBroker(b.cfg)
		if err != nil {
			return err
		}
		defer client.Disconnect(disconnectQuiesceMS)
		b.publish = brokerPublisher(client, b.cfg)
	}

	if b.cfg.MetricsAddr != "" {
		stop := serveMetrics(b.cfg.MetricsAddr)
		defer stop()
	}

	log.Info().
		Str("listen", b.cfg.ListenAddr).
		Str("topic", b.cfg.Topic).
		Float64("max_rate", b.cfg.MaxRate).
		Msg("telemetry bridge running")

	// Closing the listener is what unblocks the read loop on cancellation.
	unhook := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer unhook()

	go b.readLoop(ctx, conn)
	b.publishLoop(ctx)
	return nil
}

// readLoop pulls datagrams off the socket and queues them. It exits when the
// listener closes.
func (b *Bridge) readLoop(ctx context.Context, conn net.PacketConn) {
	buf := make([]byte, maxDatagram)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn().Err(err).Msg("telemetry read failed")
			}
			return
		}
		payload := make([]byte, n)
		copy(payload, buf[:n])
		b.enqueue(frame{payload: payload, receivedAt: b.now()})
		observability.RecordBridgeReceived()
	}
}

// enqueue inserts f, evicting the oldest queued frame when the buffer is
// full.
func (b *Bridge) enqueue(f frame) {
	for {
		select {
		case b.queue <- f:
			return
		default:
		}
		select {
		case <-b.queue:
			observability.RecordBridgeDropped("queue_full")
			log.Debug().Msg("queue full, dropped oldest frame")
		default:
		}
	}
}

func (b *Bridge) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-b.queue:
			b.forward(f)
		}
	}
}

// forward rate-limits, wraps and publishes one frame. Frames arriving inside
// the minimum gap are dropped rather than delayed; stale telemetry is worth
// less than fresh.
func (b *Bridge) forward(f frame) {
	if b.minGap > 0 && !b.lastPub.IsZero() && b.now().Sub(b.lastPub) < b.minGap {
		observability.RecordBridgeDropped("rate_limited")
		return
	}
	b.seq++
	data, err := encodeEnvelope(b.seq, f)
	if err != nil {
		log.Error().Err(err).Msg("envelope encode failed")
		return
	}
	if err := b.publish(data); err != nil {
		observability.RecordBridgeDropped("publish_failed")
		log.Warn().Err(err).Uint64("seq", b.seq).Msg("publish failed")
		return
	}
	b.lastPub = b.now()
	observability.RecordBridgePublished()
}

// serveMetrics starts the Prometheus endpoint and returns its shutdown func.
func serveMetrics(addr string) func() {
	observability.RegisterMetrics()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn().Err(err).Str("addr", addr).Msg("metrics listener failed")
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
