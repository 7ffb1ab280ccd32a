package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/halsteadcap/fundscribe/internal/config"
	"github.com/halsteadcap/fundscribe/internal/dispatch"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Show the routing decision for a request without calling the API",
	Long: `Classify runs the complexity scorer and tier selection on the given text
and prints the decision. No backend call is made and no API key is needed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		reg, err := buildRegistry(cfg)
		if err != nil {
			return err
		}

		classifier := dispatch.NewClassifier(reg)
		decision := classifier.Classify(strings.Join(args, " "))
		req, desc := decision.Request, decision.Descriptor

		bold := color.New(color.Bold)
		bold.Printf("tier:      ")
		fmt.Println(desc.Name)
		bold.Printf("model:     ")
		fmt.Println(desc.Model)
		fmt.Printf("reasoning: %s\n", desc.Reasoning)
		fmt.Printf("verbosity: %s\n", desc.Verbosity)
		fmt.Printf("tokens:    %d\n", desc.MaxTokens)
		fmt.Printf("timeout:   %s\n", desc.Timeout)
		fmt.Printf("score:     %d (%d words)\n", req.ComplexityScore, req.WordCount)

		var intents []string
		if req.HasSpeedIntent {
			intents = append(intents, "speed")
		}
		if req.HasDocumentIntent {
			intents = append(intents, "document")
		}
		if req.HasDomainIntent {
			intents = append(intents, "domain")
		}
		if len(intents) > 0 {
			fmt.Printf("intents:   %s\n", strings.Join(intents, ", "))
		}
		fmt.Printf("why:       %s\n", decision.Justification)
		return nil
	},
}
