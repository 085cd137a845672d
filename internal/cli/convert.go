package cli

import (
	"github.com/spf13/cobra"

	"csv2ics/internal/config"
	"csv2ics/internal/ics"
	appLog "csv2ics/internal/log"
)

type convertFlags struct {
	configPath string
	delimiter  string
	noHeader   bool
	encoding   string
	lineEnding string
	verbose    bool
}

func newConvertCommand(env Env) *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "csv2ics <file>",
		Short: "Convert a CSV table of full-day events into an iCalendar file",
		Long: `Reads a delimited table with the columns start date, end date, name and
description (dates as YYYY-MM-DD, end date and description may be empty) and
writes an .ics file with the same name next to it.

Event UIDs depend only on start date and name, so re-importing a regenerated
file updates events instead of duplicating them.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, env, flags)
			if err != nil {
				return err
			}

			level, _ := appLog.ParseLevel(cfg.LogLevel)
			appLog.SetLevel(level)
			appLog.Debug("effective config",
				"file", args[0],
				"delimiter", cfg.Delimiter,
				"header", cfg.HasHeader(),
				"encoding", cfg.Encoding,
				"line_ending", cfg.LineEnding,
				"config", flags.configPath,
			)

			nl, err := ics.ParseLineEnding(cfg.LineEnding)
			if err != nil {
				return invalidInvocationf("%v", err)
			}

			src := ics.Source{
				Path:      args[0],
				Delimiter: cfg.DelimiterRune(),
				HasHeader: cfg.HasHeader(),
				Encoding:  cfg.Encoding,
			}
			if _, err := ics.Convert(src, nl); err != nil {
				return failure("conversion failed", err)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.delimiter, "delimiter", "d", "", `The CSV delimiter (default ";")`)
	f.BoolVarP(&flags.noHeader, "noheader", "n", false, "The CSV does not contain a header row, i.e. the first line will not be skipped")
	f.StringVarP(&flags.encoding, "encoding", "e", "", `Source encoding label (default "utf-8")`)
	f.StringVar(&flags.lineEnding, "line-ending", "", `Line ending of the .ics file: lf|crlf (default "lf")`)
	f.StringVarP(&flags.configPath, "config", "c", "", "Path to a YAML config file (env "+config.EnvConfig+")")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// resolveConfig layers flags over environment over config file over defaults.
func resolveConfig(cmd *cobra.Command, env Env, flags convertFlags) (*config.Config, error) {
	lookup := env.Lookup
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}

	path := flags.configPath
	if path == "" {
		if v, ok := lookup(config.EnvConfig); ok {
			path = v
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, failure("failed to load config", err)
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, invalidInvocationf("%v", err)
	}

	if cmd.Flags().Changed("delimiter") {
		cfg.Delimiter = flags.delimiter
	}
	if flags.noHeader {
		cfg.SetHeader(false)
	}
	if cmd.Flags().Changed("encoding") {
		cfg.Encoding = flags.encoding
	}
	if cmd.Flags().Changed("line-ending") {
		cfg.LineEnding = flags.lineEnding
	}
	if flags.verbose {
		cfg.LogLevel = "debug"
	}
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, invalidInvocationf("%v", err)
	}
	return cfg, nil
}
