package contract

import (
	"context"
	"fmt"
	"math/big"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"simplestorage/internal/storage"
	"simplestorage/internal/word"
)

const tracerName = "simplestorage/internal/contract"

// ErrValueOutOfRange is returned by Set for negative values and values
// wider than 256 bits.
var ErrValueOutOfRange = word.ErrOutOfRange

// valueSlot is the storage slot holding the stored value.
var valueSlot = word.Zero

// SimpleStorage is a handle to one deployed instance.
type SimpleStorage struct {
	address storage.Address
	store   storage.Store
	tracer  trace.Tracer
}

// Option configures a SimpleStorage handle.
type Option func(*SimpleStorage)

// WithTracerProvider sets the provider spans are created from.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *SimpleStorage) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// New returns a handle to the instance at addr backed by store.
func New(addr storage.Address, store storage.Store, opts ...Option) *SimpleStorage {
	c := &SimpleStorage{
		address: addr,
		store:   store,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Address returns the instance's address.
func (c *SimpleStorage) Address() storage.Address {
	return c.address
}

// Set overwrites the stored value. A nil v is rejected with word.ErrNilValue.
func (c *SimpleStorage) Set(ctx context.Context, v *big.Int) error {
	w, err := word.FromBig(v)
	if err != nil {
		_, span := c.startSpan(ctx, "set")
		defer span.End()
		return c.fail(span, err)
	}
	return c.SetWord(ctx, w)
}

// SetWord overwrites the stored value with an already validated word.
func (c *SimpleStorage) SetWord(ctx context.Context, w word.Word) error {
	_, span := c.startSpan(ctx, "set")
	defer span.End()
	span.SetAttributes(attribute.String("value", w.String()))

	if _, err := c.store.Put(c.address, valueSlot, w); err != nil {
		return c.fail(span, fmt.Errorf("set %s: %w", c.address, err))
	}
	return nil
}

// Get returns the most recently stored value, or zero if Set was never called.
func (c *SimpleStorage) Get(ctx context.Context) (*big.Int, error) {
	_, span := c.startSpan(ctx, "get")
	defer span.End()

	vw, err := c.store.Get(c.address, valueSlot)
	if err != nil {
		return nil, c.fail(span, fmt.Errorf("get %s: %w", c.address, err))
	}
	return vw.Value.Big(), nil
}

func (c *SimpleStorage) startSpan(ctx context.Context, method string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "SimpleStorage."+method,
		trace.WithAttributes(attribute.String("contract.address", c.address.Hex())),
	)
}

func (c *SimpleStorage) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
