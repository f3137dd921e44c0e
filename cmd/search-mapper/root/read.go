package root

import (
	"bufio"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"search-mapper/internal/record"
	"search-mapper/internal/source"
)

const (
	formatJSON = "json"
	formatPig  = "pig"
)

func newReadCmd(g *globals) *cobra.Command {
	var (
		dir    string
		kind   string
		format string
		index  string
	)

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read an index and print one record per hit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}

			if index != "" {
				cfg.Index = index
			}

			var src source.Source

			switch kind {
			case "ndjson":
				src = source.NDJSON{Dir: dir}
			case "bson":
				src = source.BSONDump{Dir: dir}
			default:
				return errors.Errorf("unknown source %q, want ndjson or bson", kind)
			}

			if format != formatJSON && format != formatPig {
				return errors.Errorf("unknown format %q, want json or pig", format)
			}

			q, err := g.prepare(cmd, cfg)
			if err != nil {
				return err
			}

			w := bufio.NewWriter(cmd.OutOrStdout())

			err = q.Run(cmd.Context(), src, func(rec record.Record) error {
				line, err := render(rec, format)
				if err != nil {
					return err
				}

				_, err = w.WriteString(line + "\n")

				return err
			})
			if err != nil {
				return err
			}

			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory index names are relative to")
	cmd.Flags().StringVar(&kind, "source", "ndjson", "source kind: ndjson or bson")
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json or pig")
	cmd.Flags().StringVar(&index, "index", "", "index name overriding the mapping file")

	return cmd
}

// render writes a record as a JSON object or as tab separated pig fields.
func render(rec record.Record, format string) (string, error) {
	if format == formatJSON {
		data, err := rec.Value.MarshalJSON()
		return string(data), err
	}

	fields := rec.Value.Fields()
	parts := make([]string, len(fields))

	for i, f := range fields {
		parts[i] = f.Value.String()
	}

	return strings.Join(parts, "\t"), nil
}
