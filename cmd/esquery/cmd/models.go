package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/esmodel/internal/config"
)

func newModelsCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List configured models",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(g.env)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "MODEL\tINDEX\tTYPE")
			for _, name := range cfg.ModelNames() {
				mc := cfg.Models[name]
				docType := mc.Type
				if docType == "" {
					docType = "-"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", name, mc.Index, docType)
			}
			return tw.Flush()
		},
	}
}
