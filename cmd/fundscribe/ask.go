package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/halsteadcap/fundscribe/internal/dispatch"
	"github.com/halsteadcap/fundscribe/pkg/models"
)

var (
	askTier       string
	askReasoning  string
	askVerbosity  string
	askMaxTokens  int
	askNoFallback bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Dispatch one question and print the answer",
	Long: `Ask classifies the question, routes it to an execution tier, and prints
the answer together with the routing decision. Overrides pin the tier or
adjust the call parameters without changing the recorded classification.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := overridesFromFlags()
		if err != nil {
			return err
		}

		var dispatchOpts []dispatch.Option
		if askNoFallback {
			dispatchOpts = append(dispatchOpts, dispatch.WithFallbackDisabled())
		}
		dispatcher, _, err := buildDispatcher(dispatchOpts...)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		question := strings.Join(args, " ")
		outcome, err := dispatcher.Dispatch(ctx, question, opts)
		if err != nil {
			if outcome != nil && outcome.Status == models.StatusExhausted {
				fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("✗"), err)
				os.Exit(1)
			}
			return err
		}

		fmt.Println(outcome.Text)
		fmt.Println()
		printOutcomeMeta(outcome)
		return nil
	},
}

// overridesFromFlags converts the ask flags into typed overrides. Flag
// values are validated by the dispatcher, not here.
func overridesFromFlags() (*models.Overrides, error) {
	opts := &models.Overrides{}
	if askTier != "" {
		opts.ForceTier = models.Tier(askTier)
	}
	if askReasoning != "" {
		r := models.ReasoningEffort(askReasoning)
		opts.Reasoning = &r
	}
	if askVerbosity != "" {
		v := models.Verbosity(askVerbosity)
		opts.Verbosity = &v
	}
	if askMaxTokens > 0 {
		opts.MaxTokens = &askMaxTokens
	}
	return opts, nil
}

// printOutcomeMeta writes the routing summary line to stderr so piped
// output stays clean.
func printOutcomeMeta(o *models.Outcome) {
	meta := fmt.Sprintf("tier %s, score %d, %s", o.TierUsed, o.ComplexityScore, o.Elapsed.Round(10*time.Millisecond))
	if o.UsedFallback {
		meta += fmt.Sprintf(", fallback %s", o.FallbackStrategy)
		fmt.Fprintf(os.Stderr, "%s %s\n", color.YellowString("⚠"), meta)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", color.GreenString("✓"), meta)
}

func init() {
	askCmd.Flags().StringVar(&askTier, "tier", "", "Force a tier (fast, balanced, capable, document, document_large)")
	askCmd.Flags().StringVar(&askReasoning, "reasoning", "", "Override reasoning effort (minimal, low, medium, high)")
	askCmd.Flags().StringVar(&askVerbosity, "verbosity", "", "Override verbosity (low, medium, high)")
	askCmd.Flags().IntVar(&askMaxTokens, "max-tokens", 0, "Override the output token budget")
	askCmd.Flags().BoolVar(&askNoFallback, "no-fallback", false, "Fail instead of degrading through the cascade")
}
