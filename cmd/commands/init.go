package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"
	tmos "github.com/tendermint/tendermint/libs/os"

	cfg "highcourt/config"
	"highcourt/privval"
)

// InitFilesCmd initialises a fresh engine home directory.
var InitFilesCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the engine home directory",
	RunE:  initFiles,
}

func init() {
	InitFilesCmd.Flags().Int64Var(&seed, "seed", 1, "随机数种子，影响primary private key的生成")
	InitFilesCmd.Flags().Int64Var(&idx, "idx", 1, "节点编号，影响门限私钥分片的生成")
	InitFilesCmd.Flags().IntVar(&thres, "thres", 3, "门限签名阈值")
}

func initFiles(cmd *cobra.Command, args []string) error {
	return initFilesWithConfig(config)
}

func initFilesWithConfig(config *cfg.Config) error {
	if err := tmos.EnsureDir(filepath.Dir(config.JurorKeyFile()), 0700); err != nil {
		return err
	}
	if err := tmos.EnsureDir(config.DBPath(), 0700); err != nil {
		return err
	}

	jurorKeyFile := config.JurorKeyFile()
	if tmos.FileExists(jurorKeyFile) {
		fj := privval.LoadFileJuror(jurorKeyFile)
		logger.Info("Found juror key", "keyFile", jurorKeyFile, "nodeID", fj.NodeID())
	} else {
		fj := privval.GenFileJurorWithSeedAndIdx(jurorKeyFile, thres, idx, seed)
		fj.Save()
		logger.Info("Generated juror key", "keyFile", jurorKeyFile, "nodeID", fj.NodeID())
	}

	return nil
}
