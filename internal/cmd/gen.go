package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"katydid-common-idgen/pkg/idgen"
	"katydid-common-idgen/pkg/idgen/clock"
	"katydid-common-idgen/pkg/idgen/snowflake"
)

// 输出格式
const (
	formatPair = "pair" // 二进制 -> 十进制
	formatDec  = "dec"
	formatHex  = "hex"
	formatBin  = "bin"
)

func newGenCommand() *cobra.Command {
	var (
		n          int
		identifier uint64
		format     string
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate IDs locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := idgen.Default()
			if cmd.Flags().Changed("identifier") {
				var err error
				gen, err = snowflake.NewShared(snowflake.New(identifier), clock.System{})
				if err != nil {
					return err
				}
			}

			ids, err := gen.AssignBatch(cmdContext(cmd), n)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, id := range ids {
				if _, err := fmt.Fprintln(out, formatID(id, format)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 10, "number of IDs")
	cmd.Flags().Uint64Var(&identifier, "identifier", 0, "instance identifier, truncated to 10 bits (process-random when unset)")
	cmd.Flags().StringVarP(&format, "format", "f", formatPair, "output format: pair|dec|hex|bin")
	return cmd
}

func formatID(id snowflake.ID, format string) string {
	switch format {
	case formatDec:
		return id.String()
	case formatHex:
		return id.Hex()
	case formatBin:
		return id.Binary()
	default:
		return fmt.Sprintf("%b -> %d", id.Int64(), id.Int64())
	}
}
