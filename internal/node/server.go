package node

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"simplestorage/internal/contract"
	"simplestorage/internal/deploy"
	"simplestorage/internal/metrics"
	"simplestorage/internal/storage"
	"simplestorage/internal/word"
)

// Server implements the SimpleStorage gRPC service.
type Server struct {
	UnimplementedSimpleStorageServer
	deployer *deploy.Deployer
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewServer creates a new gRPC server instance.
func NewServer(deployer *deploy.Deployer, m *metrics.Metrics, logger zerolog.Logger) *Server {
	m.SetContractsDeployed(len(deployer.Deployments()))
	return &Server{
		deployer: deployer,
		metrics:  m,
		log:      logger,
	}
}

// Deploy handles Deploy requests.
func (s *Server) Deploy(ctx context.Context, req *wrapperspb.StringValue) (resp *wrapperspb.StringValue, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(metrics.OpDeploy, start, err) }()

	owner := strings.TrimSpace(req.GetValue())
	s.log.Debug().
		Str("owner", owner).
		Str("request_id", requestID(ctx)).
		Msg("Deploy request")

	c, err := s.deployer.Deploy(ctx, owner)
	if err != nil {
		s.log.Error().Err(err).Str("owner", owner).Msg("Deploy failed")
		return nil, toStatus(err)
	}
	s.metrics.SetContractsDeployed(len(s.deployer.Deployments()))

	return wrapperspb.String(c.Address().Hex()), nil
}

// Set handles Set requests.
func (s *Server) Set(ctx context.Context, req *wrapperspb.StringValue) (resp *emptypb.Empty, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(metrics.OpSet, start, err) }()

	c, err := s.contractFromContext(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Debug().
		Str("contract", c.Address().Hex()).
		Str("value", req.GetValue()).
		Str("request_id", requestID(ctx)).
		Msg("Set request")

	w, err := word.Parse(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := c.SetWord(ctx, w); err != nil {
		s.log.Error().Err(err).Str("contract", c.Address().Hex()).Msg("Set failed")
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// Get handles Get requests.
func (s *Server) Get(ctx context.Context, _ *emptypb.Empty) (resp *wrapperspb.StringValue, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(metrics.OpGet, start, err) }()

	c, err := s.contractFromContext(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Debug().
		Str("contract", c.Address().Hex()).
		Str("request_id", requestID(ctx)).
		Msg("Get request")

	v, err := c.Get(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("contract", c.Address().Hex()).Msg("Get failed")
		return nil, toStatus(err)
	}
	return wrapperspb.String(v.String()), nil
}

// contractFromContext resolves the contract named by the request metadata.
func (s *Server) contractFromContext(ctx context.Context) (*contract.SimpleStorage, error) {
	raw := firstMetadata(ctx, ContractAddressMetadataKey)
	if raw == "" {
		return nil, status.Errorf(codes.InvalidArgument, "missing %s metadata", ContractAddressMetadataKey)
	}
	addr, err := storage.ParseAddress(raw)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	c, err := s.deployer.At(addr)
	if err != nil {
		return nil, toStatus(err)
	}
	return c, nil
}

func requestID(ctx context.Context) string {
	return firstMetadata(ctx, RequestIDMetadataKey)
}

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get(key); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// toStatus maps domain errors to gRPC status errors.
func toStatus(err error) error {
	switch {
	case errors.Is(err, contract.ErrValueOutOfRange):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, deploy.ErrNotDeployed):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
