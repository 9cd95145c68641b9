package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	v2config "github.com/fieldside/cricket-pipeline-workflow/internal/config/v2"
)

// configCmd groups configuration management commands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  `Commands for validating and inspecting pipeline configurations.`,
}

var validateCmd = &cobra.Command{
	Use:   "validate [config file]",
	Short: "Validate a configuration file",
	Long:  `Validate a pipeline configuration file and report any errors or warnings.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile := args[0]

		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return fmt.Errorf("config file does not exist: %s", configFile)
		}

		result, err := v2config.Load(configFile)
		if err != nil {
			color.Red("Configuration is invalid: %v", err)
			return err
		}

		for _, warning := range result.Warnings {
			color.Yellow("warning: %s", warning)
		}
		color.Green("Configuration is valid (%s format, %d pipeline(s))",
			result.Format, len(result.Config.Pipelines))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [config file]",
	Short: "Show the resolved configuration",
	Long:  `Print a configuration after alias resolution and defaults, as the runner will see it.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := v2config.Load(args[0])
		if err != nil {
			return err
		}

		names := make([]string, 0, len(result.Config.Pipelines))
		for name := range result.Config.Pipelines {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			pipeline := result.Config.Pipelines[name]
			color.Cyan("pipeline %s:", name)
			fmt.Printf("  source: %s %v\n", pipeline.Source.Type, pipeline.Source.Config)
			for _, proc := range pipeline.Processors {
				fmt.Printf("  processor: %s %v\n", proc.Type, proc.Config)
			}
			for _, cons := range pipeline.Consumers {
				fmt.Printf("  consumer: %s %v\n", cons.Type, cons.Config)
			}
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(validateCmd)
	configCmd.AddCommand(showCmd)
	rootCmd.AddCommand(configCmd)
}
