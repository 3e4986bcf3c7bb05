package node

import (
	"context"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"simplestorage/internal/deploy"
	"simplestorage/internal/storage"
	"simplestorage/internal/word"
)

// Client calls the SimpleStorage service of a node.
type Client struct {
	conn   grpc.ClientConnInterface
	// closer is nil when the connection is owned by the caller.
	closer func() error
}

// Dial connects to the node at addr. Calls carry the caller's trace
// context using the global tracer provider and propagator.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &Client{conn: conn, closer: conn.Close}, nil
}

// NewClient wraps an existing connection.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Close closes the connection if the client opened it.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

// Deploy deploys a fresh contract owned by owner and returns its address.
func (c *Client) Deploy(ctx context.Context, owner string) (storage.Address, error) {
	out := new(wrapperspb.StringValue)
	if err := c.conn.Invoke(c.outgoing(ctx, nil), deployMethod, wrapperspb.String(owner), out); err != nil {
		return storage.Address{}, fromStatus(err)
	}
	return storage.ParseAddress(out.GetValue())
}

// Set stores v in the contract at addr.
func (c *Client) Set(ctx context.Context, addr storage.Address, v *big.Int) error {
	if v == nil {
		return word.ErrNilValue
	}
	out := new(emptypb.Empty)
	if err := c.conn.Invoke(c.outgoing(ctx, &addr), setMethod, wrapperspb.String(v.String()), out); err != nil {
		return fromStatus(err)
	}
	return nil
}

// Get returns the value stored in the contract at addr.
func (c *Client) Get(ctx context.Context, addr storage.Address) (*big.Int, error) {
	out := new(wrapperspb.StringValue)
	if err := c.conn.Invoke(c.outgoing(ctx, &addr), getMethod, &emptypb.Empty{}, out); err != nil {
		return nil, fromStatus(err)
	}
	v, ok := new(big.Int).SetString(out.GetValue(), 10)
	if !ok {
		return nil, fmt.Errorf("node returned invalid value %q", out.GetValue())
	}
	return v, nil
}

func (c *Client) outgoing(ctx context.Context, addr *storage.Address) context.Context {
	ctx = metadata.AppendToOutgoingContext(ctx, RequestIDMetadataKey, uuid.NewString())
	if addr != nil {
		ctx = metadata.AppendToOutgoingContext(ctx, ContractAddressMetadataKey, addr.Hex())
	}
	return ctx
}

// fromStatus restores sentinel errors callers can match with errors.Is.
func fromStatus(err error) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %s", deploy.ErrNotDeployed, status.Convert(err).Message())
	}
	return err
}
