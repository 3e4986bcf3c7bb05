package it

import (
	"context"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const binaryPath = "./simplestorage"

func newCluster(t *testing.T) *Cluster {
	t.Helper()
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skip("Binary not found, skipping integration test. Build with: go build -o internal/it/simplestorage ./cmd/simplestorage")
	}

	cluster, err := NewCluster(binaryPath)
	require.NoError(t, err)
	t.Cleanup(cluster.Stop)
	return cluster
}

func TestSmoke_StoreAndRetrieve(t *testing.T) {
	cluster := newCluster(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := cluster.StartNode(ctx, "n1", 61051, t.TempDir())
	require.NoError(t, err, "Failed to start node")
	client := n.Client()

	addr, err := client.Deploy(ctx, "owner")
	require.NoError(t, err)

	v, err := client.Get(ctx, addr)
	require.NoError(t, err)
	assert.Zero(t, v.Sign(), "fresh contract must read zero")

	require.NoError(t, client.Set(ctx, addr, big.NewInt(42)))

	v, err = client.Get(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int64())
}

func TestSmoke_ValueSurvivesRestart(t *testing.T) {
	cluster := newCluster(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := cluster.StartNode(ctx, "n1", 61052, t.TempDir())
	require.NoError(t, err, "Failed to start node")

	addr, err := n.Client().Deploy(ctx, "owner")
	require.NoError(t, err)
	require.NoError(t, n.Client().Set(ctx, addr, big.NewInt(7)))

	require.NoError(t, cluster.RestartNode(ctx, "n1"))

	v, err := n.Client().Get(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.Int64())
}
