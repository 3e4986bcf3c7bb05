package contract

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"simplestorage/internal/storage"
	"simplestorage/internal/word"
)

func newTestContract(t *testing.T, opts ...Option) *SimpleStorage {
	t.Helper()
	addr := storage.BytesToAddress([]byte("simple-storage"))
	return New(addr, storage.NewInMemoryStore(), opts...)
}

func TestSimpleStorage_DefaultsToZero(t *testing.T) {
	c := newTestContract(t)

	v, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Zero(t, v.Sign())
}

func TestSimpleStorage_SetGet(t *testing.T) {
	ctx := context.Background()
	maxUint256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	tests := []struct {
		name   string
		values []*big.Int
		want   *big.Int
	}{
		{name: "store and retrieve 42", values: []*big.Int{big.NewInt(42)}, want: big.NewInt(42)},
		{name: "last write wins", values: []*big.Int{big.NewInt(0), big.NewInt(7)}, want: big.NewInt(7)},
		{name: "repeated set", values: []*big.Int{big.NewInt(5), big.NewInt(5)}, want: big.NewInt(5)},
		{name: "set zero", values: []*big.Int{big.NewInt(9), big.NewInt(0)}, want: big.NewInt(0)},
		{name: "max uint256", values: []*big.Int{maxUint256}, want: maxUint256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContract(t)
			for _, v := range tt.values {
				require.NoError(t, c.Set(ctx, v))
			}
			got, err := c.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, tt.want.Cmp(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestSimpleStorage_RejectsOutOfRange(t *testing.T) {
	ctx := context.Background()
	c := newTestContract(t)
	require.NoError(t, c.Set(ctx, big.NewInt(3)))

	err := c.Set(ctx, big.NewInt(-1))
	require.ErrorIs(t, err, ErrValueOutOfRange)

	err = c.Set(ctx, new(big.Int).Lsh(big.NewInt(1), 256))
	require.ErrorIs(t, err, ErrValueOutOfRange)

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Int64())
}

func TestSimpleStorage_RejectsNil(t *testing.T) {
	ctx := context.Background()
	c := newTestContract(t)
	require.NoError(t, c.Set(ctx, big.NewInt(42)))

	err := c.Set(ctx, nil)
	require.ErrorIs(t, err, word.ErrNilValue)

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Int64(), "rejected nil must not change the value")
}

func TestSimpleStorage_SetWord(t *testing.T) {
	ctx := context.Background()
	c := newTestContract(t)

	w, err := word.Parse("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	require.NoError(t, err)
	require.NoError(t, c.SetWord(ctx, w))

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, w.String(), got.String())
}

func TestSimpleStorage_GetReturnsIndependentValue(t *testing.T) {
	ctx := context.Background()
	c := newTestContract(t)
	require.NoError(t, c.Set(ctx, big.NewInt(10)))

	v, err := c.Get(ctx)
	require.NoError(t, err)
	v.SetInt64(999)

	again, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), again.Int64())
}

func TestSimpleStorage_StoreFailure(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemoryStore()
	c := New(storage.BytesToAddress([]byte{1}), store)
	require.NoError(t, store.Close())

	assert.ErrorIs(t, c.Set(ctx, big.NewInt(1)), storage.ErrClosed)
	_, err := c.Get(ctx)
	assert.ErrorIs(t, err, storage.ErrClosed)
}

func TestSimpleStorage_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	c := newTestContract(t, WithTracerProvider(tp))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, big.NewInt(42)))
	_, err := c.Get(ctx)
	require.NoError(t, err)
	require.Error(t, c.Set(ctx, big.NewInt(-1)))

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "SimpleStorage.set", spans[0].Name())
	assert.Equal(t, "SimpleStorage.get", spans[1].Name())
	assert.Len(t, spans[2].Events(), 1, "failed set should record the error")
}

func TestSimpleStorage_SpansJoinCallerTrace(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	c := newTestContract(t, WithTracerProvider(tp))

	ctx, parent := tp.Tracer("test").Start(context.Background(), "rpc")
	require.NoError(t, c.Set(ctx, big.NewInt(1)))
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "SimpleStorage.set", spans[0].Name())
	assert.Equal(t, parent.SpanContext().TraceID(), spans[0].SpanContext().TraceID())
	assert.Equal(t, parent.SpanContext().SpanID(), spans[0].Parent().SpanID())
}
