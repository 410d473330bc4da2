package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/unicode/norm"

	"github.com/forest6511/passforge/internal/report"
	"github.com/forest6511/passforge/pkg/policy"
	"github.com/forest6511/passforge/pkg/strength"
)

// maxScoreInput caps the bytes read for a scored password.
const maxScoreInput = 4096

// Score command flags
var (
	scoreMode   string
	scoreFormat string
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVarP(&scoreMode, "mode", "m", policy.ModeFreeForm.String(), "Score as if generated in this mode: freeform, segmented or mixed")
	scoreCmd.Flags().StringVarP(&scoreFormat, "format", "f", report.FormatText, "Output format: text, json or markdown")

	registerScoreCompletions(scoreCmd)
}

var scoreCmd = &cobra.Command{
	Use:   "score [password]",
	Short: "Score the strength of a password",
	Long: `Score a password: entropy in bits, a 0-100 score, a strength label and
the weak patterns found.

Without an argument the password is read from a hidden prompt, or from the
first line of stdin when stdin is not a terminal. Prefer these over the
argument, which is visible in shell history and process listings.

Examples:
  passforge score
  echo 'correct horse' | passforge score
  passforge score --mode segmented`,
	Args: cobra.MaximumNArgs(1),
	RunE: executeScore,
}

func executeScore(cmd *cobra.Command, args []string) error {
	mode, err := policy.ParseMode(scoreMode)
	if err != nil {
		return err
	}

	w, err := report.NewWriter(scoreFormat, cmd.OutOrStdout(), true)
	if err != nil {
		return err
	}

	password, err := readScoreInput(cmd, args)
	if err != nil {
		return err
	}

	r := scorePassword(password, mode)
	logger.Debug("password scored", "mode", mode.String(), "score", r.Score, "label", r.Label.String())

	_, err = w.WriteScore(r)
	return err
}

// scorePassword NFC-normalizes password and scores it under mode.
func scorePassword(password string, mode policy.Mode) strength.Report {
	password = norm.NFC.String(password)
	return strength.Score(password, strength.ContextForMode(mode, password))
}

// readScoreInput returns the argument, a hidden prompt entry or the first stdin line.
func readScoreInput(cmd *cobra.Command, args []string) (string, error) {
	var password string

	switch {
	case len(args) == 1:
		password = args[0]
	case cmd.InOrStdin() == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())):
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(passwordBytes)
	default:
		line, err := readLine(cmd.InOrStdin())
		if err != nil {
			return "", err
		}
		password = line
	}

	if password == "" {
		return "", errors.New("password is required")
	}
	if len(password) > maxScoreInput {
		return "", fmt.Errorf("password must be at most %d bytes", maxScoreInput)
	}
	return password, nil
}

// readLine reads a single line, trimming the trailing newline
func readLine(r io.Reader) (string, error) {
	reader := bufio.NewReader(io.LimitReader(r, maxScoreInput+2))
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	value := strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(value, "\r"), nil
}
