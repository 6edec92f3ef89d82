package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/unshred/pkg/config"
	"github.com/matzehuels/unshred/pkg/errors"
)

// configCommand creates the config command for inspecting settings.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and initialize the configuration file",
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configInitCommand())

	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := encodeConfig(cfg, format, &buf); err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(buf.Bytes())
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "toml", "output format: toml (default), yaml")
	return cmd
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.resolveConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.resolveConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				printWarning("Config already exists")
				printFile(path)
				printNextStep("Overwrite it", "unshred config init --force")
				return nil
			}

			format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
			var buf bytes.Buffer
			if err := encodeConfig(config.Default(), format, &buf); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}
			if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			printSuccess("Wrote default configuration")
			printFile(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// resolveConfigPath returns --config or the default path.
func (c *CLI) resolveConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	return config.DefaultPath()
}

func encodeConfig(cfg config.Config, format string, buf *bytes.Buffer) error {
	switch format {
	case "toml":
		return cfg.WriteTOML(buf)
	case "yaml", "yml":
		return cfg.WriteYAML(buf)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "invalid config format: %q (must be one of: toml, yaml)", format)
}
