package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/halsteadcap/fundscribe/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View or initialize configuration.

Configuration is stored at ~/.config/fundscribe/config.yaml
Project-specific overrides can be placed in .fundscribe.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		displayConfig(cfg)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		displayConfig(cfg)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default user configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GetUserConfigPath()
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}

		if err := config.Save(config.Default()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("%s Wrote %s\n", color.GreenString("✓"), path)

		if os.Getenv("ANTHROPIC_API_KEY") == "" {
			fmt.Printf("%s ANTHROPIC_API_KEY not set; set it or add anthropic.api_key to the config\n", color.YellowString("⚠"))
		}
		return nil
	},
}

// displayConfig prints the effective configuration with the key masked.
func displayConfig(cfg *config.Config) {
	key, _ := config.GetAPIKey(cfg)
	fmt.Printf("anthropic.api_key:        %s\n", config.MaskAPIKey(key))
	fmt.Printf("anthropic.use_aws_bedrock: %t\n", cfg.Anthropic.UseAWSBedrock)
	if cfg.Anthropic.UseAWSBedrock {
		fmt.Printf("anthropic.aws_region:     %s\n", cfg.Anthropic.AWSRegion)
		fmt.Printf("anthropic.aws_profile:    %s\n", cfg.Anthropic.AWSProfile)
	}
	fmt.Printf("defaults.tier_file:       %s\n", orUnset(cfg.Defaults.TierFile))
	fmt.Printf("defaults.fund:            %s\n", orUnset(cfg.Defaults.Fund))
	fmt.Printf("timeouts.fast:            %s\n", cfg.Timeouts.Fast)
	fmt.Printf("timeouts.balanced:        %s\n", cfg.Timeouts.Balanced)
	fmt.Printf("timeouts.capable:         %s\n", cfg.Timeouts.Capable)
	fmt.Printf("watch.dir:                %s\n", orUnset(cfg.Watch.Dir))
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
