package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"csv2ics/internal/config"
	appLog "csv2ics/internal/log"
)

const defaultConfigPath = "csv2ics.yaml"

func newConfigCommand(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the csv2ics config file",
	}
	cmd.AddCommand(newConfigInitCommand(env))
	return cmd
}

func newConfigInitCommand(env Env) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:           "init [path]",
		Short:         "Write a config file with default values",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}

			if !force {
				_, err := os.Stat(path)
				if err == nil {
					return invalidInvocationf("%s already exists (use --force to overwrite)", path)
				}
				if !errors.Is(err, fs.ErrNotExist) {
					return failure("failed to stat config", err)
				}
			}

			if err := config.DefaultConfig().Save(path); err != nil {
				return failure("failed to write config", err)
			}
			appLog.Info("config written", "path", path)
			fmt.Fprintln(env.Stdout, path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}
