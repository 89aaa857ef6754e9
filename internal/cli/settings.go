package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/scgraph/pkg/config"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and check configuration files",
	}
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configValidateCommand())
	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the effective configuration: the built-in defaults merged with
--config. The output is a complete config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "toml":
				return toml.NewEncoder(stdout).Encode(c.Config)
			case "yaml":
				enc := yaml.NewEncoder(stdout)
				enc.SetIndent(2)
				if err := enc.Encode(c.Config); err != nil {
					return err
				}
				return enc.Close()
			}
			return fmt.Errorf("unknown format %q (want toml or yaml)", format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "toml", "output format: toml, yaml")
	return cmd
}

func (c *CLI) configValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			printSuccess("%s is valid", args[0])
			printKeyValue("cache", cfg.Cache.Backend)
			printKeyValue("server", cfg.Server.Addr)
			printKeyValue("max ticks", fmt.Sprintf("%d", cfg.Layout.MaxTicks))
			return nil
		},
	}
}
