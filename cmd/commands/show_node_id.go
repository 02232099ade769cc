package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	tmos "github.com/tendermint/tendermint/libs/os"

	"highcourt/privval"
)

// ShowNodeIDCmd 打印本地juror key派生出的NodeID
var ShowNodeIDCmd = &cobra.Command{
	Use:     "show-node-id",
	Aliases: []string{"show_node_id"},
	Short:   "Show this node's ID",
	PreRun:  deprecateSnakeCase,
	RunE:    showNodeID,
}

func showNodeID(cmd *cobra.Command, args []string) error {
	jurorKeyFile := config.JurorKeyFile()
	if !tmos.FileExists(jurorKeyFile) {
		return fmt.Errorf("juror key at %s does not exist, run init first", jurorKeyFile)
	}

	fj := privval.LoadFileJuror(jurorKeyFile)
	fmt.Println(fj.NodeID())
	return nil
}
