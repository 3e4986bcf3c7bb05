package node

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"simplestorage/internal/config"
	"simplestorage/internal/contract"
	"simplestorage/internal/deploy"
	"simplestorage/internal/metrics"
	"simplestorage/internal/storage"
)

// Node hosts SimpleStorage contracts and serves them over gRPC.
type Node struct {
	nodeID     string
	listenAddr string
	grpcServer *grpc.Server
	health     *health.Server
	store      storage.Store
	deployer   *deploy.Deployer
	registry   *prometheus.Registry
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

type options struct {
	tracerProvider trace.TracerProvider
	propagators    propagation.TextMapPropagator
}

// Option configures a Node.
type Option func(*options)

// WithTracerProvider sets the provider for RPC and contract spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithPropagators sets the propagators used to extract trace context from
// incoming requests. Defaults to the global propagator.
func WithPropagators(p propagation.TextMapPropagator) Option {
	return func(o *options) {
		o.propagators = p
	}
}

// NewNode opens the configured store and prepares a node. The store is
// closed by Stop.
func NewNode(cfg config.Config, opts ...Option) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	n, err := newNode(cfg.NodeID, cfg.ListenAddr, store, opts...)
	if err != nil {
		store.Close()
		return nil, err
	}
	return n, nil
}

func newNode(nodeID, listenAddr string, store storage.Store, opts ...Option) (*Node, error) {
	o := options{
		tracerProvider: otel.GetTracerProvider(),
		propagators:    otel.GetTextMapPropagator(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	deployer, err := deploy.NewDeployer(store, contract.WithTracerProvider(o.tracerProvider))
	if err != nil {
		return nil, fmt.Errorf("failed to load deployments: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	n := &Node{
		nodeID:     nodeID,
		listenAddr: listenAddr,
		store:      store,
		deployer:   deployer,
		registry:   registry,
		metrics:    metrics.NewMetrics(registry),
		log:        log.With().Str("node", nodeID).Logger(),
	}

	n.grpcServer = grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler(
			otelgrpc.WithTracerProvider(o.tracerProvider),
			otelgrpc.WithPropagators(o.propagators),
		)),
	)
	RegisterSimpleStorageServer(n.grpcServer, NewServer(n.deployer, n.metrics, n.log))
	reflection.Register(n.grpcServer)

	n.health = health.NewServer()
	n.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(n.grpcServer, n.health)
	return n, nil
}

func openStore(cfg config.Config) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendLevelDB:
		return storage.OpenLevelDBStore(cfg.DataDir)
	default:
		return storage.NewInMemoryStore(), nil
	}
}

// Start listens on the configured address and serves until Stop is called.
func (n *Node) Start() error {
	lis, err := net.Listen("tcp", n.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", n.listenAddr, err)
	}
	return n.Serve(lis)
}

// Serve serves gRPC requests on lis until Stop is called. It returns nil
// if the node was stopped, including before Serve was reached.
func (n *Node) Serve(lis net.Listener) error {
	n.log.Info().Str("addr", lis.Addr().String()).Msg("Starting node")

	if err := n.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// MetricsHandler returns the Prometheus scrape handler for this node.
func (n *Node) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(n.registry, promhttp.HandlerOpts{})
}

// Deployer returns the node's deployer.
func (n *Node) Deployer() *deploy.Deployer {
	return n.deployer
}

// Stop gracefully stops the node and closes its store.
func (n *Node) Stop() {
	n.log.Info().Msg("Stopping node")
	n.health.Shutdown()
	n.grpcServer.GracefulStop()
	if err := n.store.Close(); err != nil {
		n.log.Error().Err(err).Msg("Failed to close store")
	}
}
