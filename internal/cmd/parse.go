package cmd

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/idgen/snowflake"
)

func newParseCommand() *cobra.Command {
	var epoch string

	cmd := &cobra.Command{
		Use:   "parse <id>...",
		Short: "Decode IDs into timestamp, identifier and sequence",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := snowflake.DefaultParser()
			if epoch != "" {
				t, err := time.Parse(time.RFC3339, epoch)
				if err != nil {
					return err
				}
				parser = snowflake.NewParser(t)
			}

			infos := make([]*core.IDInfo, 0, len(args))
			for _, arg := range args {
				id, err := snowflake.ParseID(arg)
				if err != nil {
					return err
				}
				info, err := parser.Parse(id.Int64())
				if err != nil {
					return err
				}
				infos = append(infos, info)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(infos)
		},
	}
	cmd.Flags().StringVar(&epoch, "epoch", "", "custom epoch the IDs were generated with (RFC3339)")
	return cmd
}
