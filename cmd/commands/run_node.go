package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	tmos "github.com/tendermint/tendermint/libs/os"

	nm "highcourt/node"
)

// AddNodeFlags exposes node-level overrides on the command line.
func AddNodeFlags(cmd *cobra.Command) {
	cmd.Flags().String("moniker", config.Moniker, "node name")
	cmd.Flags().String("rpc.laddr", config.RPC.ListenAddress, "RPC listen address")
	cmd.Flags().String("engine_id", config.EngineID, "engine instance identifier")
}

// NewRunNodeCmd returns the command that starts the engine with the given
// node provider.
func NewRunNodeCmd(nodeProvider nm.Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "start",
		Aliases: []string{"node", "run"},
		Short:   "Run the settlement engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := nodeProvider(config, logger)
			if err != nil {
				return fmt.Errorf("failed to create node: %w", err)
			}

			if err := n.Start(); err != nil {
				return fmt.Errorf("failed to start node: %w", err)
			}
			logger.Info("Started node", "engine", config.EngineID, "moniker", config.Moniker)

			// 等待SIGTERM/SIGINT后优雅退出
			tmos.TrapSignal(logger, func() {
				if n.IsRunning() {
					if err := n.Stop(); err != nil {
						logger.Error("unable to stop the node", "error", err)
					}
				}
			})

			select {}
		},
	}

	AddNodeFlags(cmd)
	return cmd
}
