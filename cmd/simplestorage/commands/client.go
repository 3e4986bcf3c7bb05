package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"simplestorage/internal/node"
	"simplestorage/internal/storage"
	"simplestorage/internal/word"
)

const defaultNodeAddr = "127.0.0.1:50051"

var (
	nodeAddr string
	timeout  time.Duration
)

func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&nodeAddr, "addr", defaultNodeAddr, "node gRPC address")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
}

// withClient dials the node and runs fn with a request-scoped context.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *node.Client) error) error {
	client, err := node.Dial(nodeAddr)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	return fn(ctx, client)
}

func deployCmd() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy a fresh SimpleStorage contract and print its address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *node.Client) error {
				addr, err := c.Deploy(ctx, owner)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), addr.Hex())
				return nil
			})
		},
	}

	addClientFlags(cmd)
	cmd.Flags().StringVar(&owner, "owner", "owner", "owner label the address is derived from")
	return cmd
}

func setCmd() *cobra.Command {
	var contractAddr string

	cmd := &cobra.Command{
		Use:   "set VALUE",
		Short: "Store a non-negative integer in a contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := storage.ParseAddress(contractAddr)
			if err != nil {
				return err
			}
			w, err := word.Parse(args[0])
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, c *node.Client) error {
				return c.Set(ctx, addr, w.Big())
			})
		},
	}

	addClientFlags(cmd)
	cmd.Flags().StringVar(&contractAddr, "contract", "", "contract address")
	cmd.MarkFlagRequired("contract")
	return cmd
}

func getCmd() *cobra.Command {
	var contractAddr string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the value stored in a contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := storage.ParseAddress(contractAddr)
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, c *node.Client) error {
				v, err := c.Get(ctx, addr)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v.String())
				return nil
			})
		},
	}

	addClientFlags(cmd)
	cmd.Flags().StringVar(&contractAddr, "contract", "", "contract address")
	cmd.MarkFlagRequired("contract")
	return cmd
}
