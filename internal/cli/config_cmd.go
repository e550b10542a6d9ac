package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/akashic/internal/config"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.ConfigPath
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}
			if err := config.WriteDefault(path); err != nil {
				return WrapExitError(ExitCommandError, "failed to write config", err)
			}
			return opts.formatter(cmd).Emit(map[string]string{"path": path}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Wrote default config to %s\n", path)
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Emit(cfg, func(w io.Writer) error {
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return err
				}
				_, err = w.Write(data)
				return err
			})
		},
	})

	return cmd
}
