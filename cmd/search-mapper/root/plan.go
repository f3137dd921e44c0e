package root

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"search-mapper/internal/plan"
)

func newPlanCmd(g *globals) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Resolve the schema and print the projection plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}

			q, err := g.prepare(cmd, cfg)
			if err != nil {
				return err
			}

			if dump {
				spew.Fdump(cmd.OutOrStdout(), q.Plan())
				return nil
			}

			data, err := plan.ExportYAML(q.Plan())
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "dump the plan structure instead of YAML")

	return cmd
}
