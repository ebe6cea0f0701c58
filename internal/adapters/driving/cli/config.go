package cli

import (
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change webrag configuration.

Keys use dot notation, for example:

  webrag config set embedding.provider ollama
  webrag config set embedding.model nomic-embed-text
  webrag config set chunker.max_passage_size 800
  webrag config get llm.provider`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all configuration values",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// configKeys lists the recognised keys for "config show".
var configKeys = []string{
	"embedding.provider",
	"embedding.model",
	"embedding.base_url",
	"embedding.dimensions",
	"llm.provider",
	"llm.model",
	"llm.base_url",
	"llm.max_tokens",
	"llm.timeout_seconds",
	"chunker.max_passage_size",
	"query.top_k",
	"storage.data_dir",
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := ensureConfigStore(); err != nil {
		return err
	}

	keys := make([]string, len(configKeys))
	copy(keys, configKeys)
	sort.Strings(keys)

	for _, key := range keys {
		if val, ok := configStore.Get(key); ok {
			cmd.Printf("%s = %v\n", key, val)
		} else {
			cmd.Printf("%s = (default)\n", key)
		}
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if err := ensureConfigStore(); err != nil {
		return err
	}

	val, ok := configStore.Get(args[0])
	if !ok {
		cmd.Printf("%s is not set\n", args[0])
		return nil
	}
	cmd.Printf("%v\n", val)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := ensureConfigStore(); err != nil {
		return err
	}

	key, raw := args[0], args[1]
	if err := configStore.Set(key, parseConfigValue(raw)); err != nil {
		return err
	}
	cmd.Printf("%s = %s\n", key, raw)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if err := ensureConfigStore(); err != nil {
		return err
	}
	cmd.Println(configStore.Path())
	return nil
}

// parseConfigValue stores integers and booleans typed; everything else
// stays a string.
func parseConfigValue(raw string) any {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
