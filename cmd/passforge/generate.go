package main

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/forest6511/passforge/internal/report"
	"github.com/forest6511/passforge/pkg/generator"
	"github.com/forest6511/passforge/pkg/history"
	"github.com/forest6511/passforge/pkg/policy"
)

const (
	defaultPasswordCount = 1
	maxPasswordCount     = 100
)

// Generate command flags
var (
	generateMode             string
	generateLength           int
	generateCount            int
	generateNoUppercase      bool
	generateNoLowercase      bool
	generateNoNumbers        bool
	generateNoSymbols        bool
	generateExcludeAmbiguous bool
	generateCopy             bool
	generateFormat           string
	generateExplain          bool
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateMode, "mode", "m", policy.ModeFreeForm.String(), "Generation mode: freeform, segmented or mixed")
	generateCmd.Flags().IntVarP(&generateLength, "length", "l", policy.DefaultLength, fmt.Sprintf("Password length for freeform mode (%d-%d)", policy.MinLength, policy.MaxLength))
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", defaultPasswordCount, fmt.Sprintf("Number of passwords to generate (1-%d)", maxPasswordCount))
	generateCmd.Flags().BoolVar(&generateNoUppercase, "no-uppercase", false, "Exclude uppercase letters")
	generateCmd.Flags().BoolVar(&generateNoLowercase, "no-lowercase", false, "Exclude lowercase letters")
	generateCmd.Flags().BoolVar(&generateNoNumbers, "no-numbers", false, "Exclude numbers")
	generateCmd.Flags().BoolVar(&generateNoSymbols, "no-symbols", false, "Exclude symbols")
	generateCmd.Flags().BoolVar(&generateExcludeAmbiguous, "exclude-ambiguous", false, "Exclude look-alike characters such as I l 1 O 0")
	generateCmd.Flags().BoolVarP(&generateCopy, "copy", "c", false, "Copy first password to clipboard (accessible to all processes)")
	generateCmd.Flags().StringVarP(&generateFormat, "format", "f", report.FormatText, "Output format: text, json or markdown")
	generateCmd.Flags().BoolVar(&generateExplain, "explain", false, "Show entropy, score and deductions for each password")

	registerGenerateCompletions(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate passwords",
	Long: `Generate passwords with a cryptographically secure random source.

Flags override the policy in the config file only when they are given.

Examples:
  # Generate a 16-character password (default)
  passforge generate

  # Generate a 32-character password without symbols
  passforge generate -l 32 --no-symbols

  # Generate 5 segmented passwords
  passforge generate --mode segmented -n 5

  # Show the strength report
  passforge generate --explain

  # Generate and copy to clipboard
  passforge generate -c`,
	Args: cobra.NoArgs,
	RunE: executeGenerate,
}

func executeGenerate(cmd *cobra.Command, args []string) error {
	if err := validateGenerateFlags(); err != nil {
		return err
	}

	p, err := buildGeneratePolicy(cmd.Flags(), cfg.Policy)
	if err != nil {
		return err
	}

	w, err := report.NewWriter(generateFormat, cmd.OutOrStdout(), generateExplain)
	if err != nil {
		return err
	}

	results, err := newGenerator(cfg, logger).GenerateMany(cmd.Context(), p, generateCount)
	if err != nil {
		return fmt.Errorf("failed to generate password: %w", err)
	}

	if _, err := w.WriteResults(results); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	recordHistory(cmd.Context(), results)

	if generateCopy && len(results) > 0 {
		if err := copyToClipboard(results[0].Password.Value); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to copy to clipboard: %v\n", err)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "Password copied to clipboard")
		}
	}

	return nil
}

// validateGenerateFlags validates flags that do not depend on the policy.
func validateGenerateFlags() error {
	if generateCount < 1 {
		return fmt.Errorf("count must be at least 1")
	}
	if generateCount > maxPasswordCount {
		return fmt.Errorf("count must be at most %d", maxPasswordCount)
	}
	return nil
}

// buildGeneratePolicy applies the flags that were set on top of base.
func buildGeneratePolicy(flags *pflag.FlagSet, base policy.Policy) (policy.Policy, error) {
	p := base

	if flags.Changed("mode") {
		mode, err := policy.ParseMode(generateMode)
		if err != nil {
			return policy.Policy{}, err
		}
		p.Mode = mode
	}
	if flags.Changed("length") {
		p.Length = generateLength
	}

	exclusions := []struct {
		flag    string
		exclude bool
		class   *bool
	}{
		{"no-uppercase", generateNoUppercase, &p.Uppercase},
		{"no-lowercase", generateNoLowercase, &p.Lowercase},
		{"no-numbers", generateNoNumbers, &p.Numbers},
		{"no-symbols", generateNoSymbols, &p.Symbols},
	}
	for _, e := range exclusions {
		if flags.Changed(e.flag) {
			*e.class = !e.exclude
		}
	}
	if flags.Changed("exclude-ambiguous") {
		p.ExcludeAmbiguous = generateExcludeAmbiguous
	}

	if err := p.Validate(); err != nil {
		return policy.Policy{}, err
	}
	return p, nil
}

// recordHistory stores the reports when history is enabled. Failures only
// warn; the passwords are already printed.
func recordHistory(ctx context.Context, results []*generator.Result) {
	store, err := openHistory(cfg)
	if err != nil {
		logger.Warn("history disabled for this run", "error", err)
		return
	}
	if store == nil {
		return
	}
	defer store.Close()

	for _, r := range results {
		if err := store.Record(ctx, history.NewEntry(history.SourceCLI, r)); err != nil {
			logger.Warn("failed to record history", "error", err)
			return
		}
	}
}

// copyToClipboard copies text to the system clipboard
func copyToClipboard(text string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("pbcopy")
	case "linux":
		if _, err := exec.LookPath("xclip"); err == nil {
			cmd = exec.Command("xclip", "-selection", "clipboard")
		} else if _, err := exec.LookPath("xsel"); err == nil {
			cmd = exec.Command("xsel", "--clipboard", "--input")
		} else {
			return fmt.Errorf("clipboard tool not found: install xclip or xsel")
		}
	case "windows":
		cmd = exec.Command("clip")
	default:
		return fmt.Errorf("clipboard not supported on %s", runtime.GOOS)
	}

	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}
