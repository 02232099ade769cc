package commands

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	tmos "github.com/tendermint/tendermint/libs/os"

	"highcourt/privval"
)

var (
	seed  int64
	idx   int64
	thres int

	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

// GenJurorKeyCmd生成陪审员的BLS身份密钥对
var GenJurorKeyCmd = &cobra.Command{
	Use:     "gen-juror-key",
	Aliases: []string{"gen_juror_key"},
	Args:    cobra.ArbitraryArgs,
	Short:   "Generate a new juror keypair",
	PreRun:  deprecateSnakeCase,
	Run:     genJurorKey,
}

func init() {
	GenJurorKeyCmd.Flags().Int64Var(&seed, "seed", 1, "随机数种子，影响primary private key的生成")
	GenJurorKeyCmd.MarkFlagRequired("seed")
	GenJurorKeyCmd.Flags().Int64Var(&idx, "idx", 1, "节点编号，影响门限私钥分片的生成")
	GenJurorKeyCmd.MarkFlagRequired("idx")
	GenJurorKeyCmd.Flags().IntVar(&thres, "thres", 3, "门限签名阈值")
	GenJurorKeyCmd.MarkFlagRequired("thres")
}

func genJurorKey(cmd *cobra.Command, args []string) {
	jurorKeyFile := config.JurorKeyFile()
	if tmos.FileExists(jurorKeyFile) {
		logger.Info("Found juror key", "keyFile", jurorKeyFile)
		return
	}

	fj := privval.GenFileJurorWithSeedAndIdx(jurorKeyFile, thres, idx, seed)
	jsbz, err := json.Marshal(fj)
	if err != nil {
		panic(err)
	}
	fj.Save()

	fmt.Printf(`%v
`, string(jsbz))
}
