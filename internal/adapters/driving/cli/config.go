package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change persisted settings",
	Long: `Settings are read from the TOML config file, then .env and environment
variables, then command flags; later layers win.

  proctok config show              - print the resolved settings
  proctok config set KEY VALUE     - persist one setting
  proctok config keys              - list every setting key
  proctok config path              - print the config file location`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := settingsFor(configPath)
		if err != nil {
			return err
		}
		values := svc.Show(cfg)
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			cmd.Printf("%s = %s\n", k, values[k])
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Persist one setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := settingsFor(configPath)
		if err != nil {
			return err
		}
		if err := svc.Set(args[0], args[1]); err != nil {
			return fmt.Errorf("failed to set %s: %w", args[0], err)
		}
		cmd.Printf("%s saved to %s\n", args[0], svc.Path())
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List every setting key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := settingsFor(configPath)
		if err != nil {
			return err
		}
		for _, k := range svc.Keys() {
			cmd.Println(k)
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := settingsFor(configPath)
		if err != nil {
			return err
		}
		cmd.Println(svc.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configKeysCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
