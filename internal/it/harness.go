package it

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"simplestorage/internal/node"
)

// Cluster represents a set of simplestorage node processes under test
type Cluster struct {
	nodes      []*Node
	logDir     string
	binaryPath string
	mu         sync.Mutex
}

// Node represents a single node process
type Node struct {
	ID           string
	Addr         string
	Port         int
	DataDir      string
	cmd          *exec.Cmd
	logFile      *os.File
	conn         *grpc.ClientConn
	client       *node.Client
	healthClient healthpb.HealthClient
}

// NewCluster creates a new test cluster harness
func NewCluster(binaryPath string) (*Cluster, error) {
	logDir := filepath.Join(".local", "it-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &Cluster{
		nodes:      make([]*Node, 0),
		logDir:     logDir,
		binaryPath: binaryPath,
	}, nil
}

// StartNode starts a node backed by LevelDB in dataDir and waits until it
// reports healthy
func (c *Cluster) StartNode(ctx context.Context, nodeID string, port int, dataDir string) (*Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := &Node{
		ID:      nodeID,
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Port:    port,
		DataDir: dataDir,
	}
	if err := c.launch(ctx, n); err != nil {
		return nil, err
	}

	c.nodes = append(c.nodes, n)
	return n, nil
}

// launch starts the node process, connects a client and waits for readiness
func (c *Cluster) launch(ctx context.Context, n *Node) error {
	logPath := filepath.Join(c.logDir, fmt.Sprintf("%s.log", n.ID))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.binaryPath, "serve",
		"--node-id", n.ID,
		"--listen", n.Addr,
		"--metrics-listen", "",
		"--backend", "leveldb",
		"--data-dir", n.DataDir,
		"--log-format", "json",
		"--log-level", "debug",
	)
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return fmt.Errorf("failed to start node %s: %w", n.ID, err)
	}

	conn, err := grpc.NewClient(n.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		logFile.Close()
		return fmt.Errorf("failed to dial node %s: %w", n.ID, err)
	}

	n.cmd = cmd
	n.logFile = logFile
	n.conn = conn
	n.client = node.NewClient(conn)
	n.healthClient = healthpb.NewHealthClient(conn)

	if err := waitForReady(ctx, n, 10*time.Second); err != nil {
		n.Stop()
		return fmt.Errorf("node %s failed to become ready: %w", n.ID, err)
	}
	return nil
}

// waitForReady polls the gRPC health service until the node is serving
func waitForReady(ctx context.Context, n *Node, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if time.Now().After(deadline) {
				return fmt.Errorf("timeout waiting for node %s to be ready", n.ID)
			}

			healthCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			resp, err := n.healthClient.Check(healthCtx, &healthpb.HealthCheckRequest{Service: node.ServiceName})
			cancel()

			if err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING {
				return nil
			}
		}
	}
}

// Stop stops all nodes in the cluster
func (c *Cluster) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range c.nodes {
		n.Stop()
	}
	c.nodes = nil
}

// Stop kills a single node process and releases its connection
func (n *Node) Stop() {
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
	}
	if n.cmd != nil && n.cmd.Process != nil {
		n.cmd.Process.Kill()
		n.cmd.Wait()
		n.cmd = nil
	}
	if n.logFile != nil {
		n.logFile.Close()
		n.logFile = nil
	}
}

// Client returns the SimpleStorage client for a node
func (n *Node) Client() *node.Client {
	return n.client
}

// RestartNode kills a node and starts it again on the same port and data directory
func (c *Cluster) RestartNode(ctx context.Context, nodeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range c.nodes {
		if n.ID == nodeID {
			n.Stop()
			return c.launch(ctx, n)
		}
	}
	return fmt.Errorf("node %s not found", nodeID)
}
