// Package cmd idgen命令行：serve启动HTTP服务，gen本地生成ID，parse解析ID
package cmd

import (
	"github.com/spf13/cobra"
)

// NewRoot 构造根命令
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "idgen",
		Short:         "Snowflake ID generator",
		Long:          "idgen assigns 64-bit time-ordered Snowflake IDs, locally or as an HTTP service.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand())
	root.AddCommand(newGenCommand())
	root.AddCommand(newParseCommand())
	return root
}
