package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage mindlayout configuration",
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configPathCommand())

	return cmd
}

// configInitCommand writes the default settings to a config file.
func (c *CLI) configInitCommand() *cobra.Command {
	var (
		project bool
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := globalConfigPath()
			if project {
				path = projectConfigFile
			}
			if path == "" {
				return fmt.Errorf("cannot determine config directory")
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := writeSettings(f, DefaultSettings()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			printSuccess("Wrote default configuration")
			printFile(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&project, "project", false, "write ./"+projectConfigFile+" instead of the global file")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

// configShowCommand prints the merged settings.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeSettings(os.Stdout, c.settings)
		},
	}
}

// configPathCommand prints where configuration is read from.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printKeyValue("global", globalConfigPath())
			printKeyValue("project", projectConfigFile)
			return nil
		},
	}
}

// writeSettings encodes settings as TOML using their mapstructure keys.
func writeSettings(w io.Writer, s *Settings) error {
	m, err := structToMap(s)
	if err != nil {
		return err
	}
	return toml.NewEncoder(w).Encode(m)
}
