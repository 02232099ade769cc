package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version 引擎版本号，发布时由构建脚本注入
var Version = "0.1.0-dev"

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}
