package root

import (
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"search-mapper/internal/mapping"
	"search-mapper/internal/query"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	config   string
	logLevel string
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   "search-mapper",
		Short: "Map document store search hits to structured records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&g.config, "config", "c", "mapping.yaml", "query mapping file")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn, error, none")

	cmd.AddCommand(newPlanCmd(g))
	cmd.AddCommand(newReadCmd(g))
	cmd.AddCommand(newIndexCmd(g))

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)

	return cmd.Execute()
}

func (g *globals) logger(w io.Writer) (log.Logger, error) {
	var opt level.Option

	switch strings.ToLower(g.logLevel) {
	case "debug":
		opt = level.AllowDebug()
	case "info":
		opt = level.AllowInfo()
	case "warn", "warning":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	case "none":
		opt = level.AllowNone()
	default:
		return nil, errors.Errorf("unknown log level %q", g.logLevel)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	return level.NewFilter(logger, opt), nil
}

func (g *globals) load() (*mapping.QueryConfig, error) {
	cfg, err := mapping.LoadFile(g.config)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", g.config)
	}

	return cfg, nil
}

func (g *globals) prepare(cmd *cobra.Command, cfg *mapping.QueryConfig) (*query.Query, error) {
	logger, err := g.logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	return query.Prepare(cfg, query.WithLogger(logger))
}
