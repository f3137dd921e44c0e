package root

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"search-mapper/internal/decode"
	"search-mapper/internal/value"
)

func newIndexCmd(g *globals) *cobra.Command {
	var doc string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Resolve the index template, optionally against a JSON document",
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

			fields := value.Null()
			if doc != "" {
				fields, err = decode.New().Infer([]byte(doc))
				if err != nil {
					return errors.Wrap(err, "invalid --doc")
				}
			}

			name, err := q.ResolveIndex(fields)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), name)

			return err
		},
	}

	cmd.Flags().StringVar(&doc, "doc", "", "JSON document the template is resolved against")

	return cmd
}
