package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/forest6511/passforge/internal/report"
	"github.com/forest6511/passforge/pkg/history"
)

// History flags
var (
	historyLimit      int
	historyFormat     string
	historyClearForce bool
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show (0 for all)")
	historyListCmd.Flags().StringVarP(&historyFormat, "format", "f", report.FormatText, "Output format: text or json")
	historyClearCmd.Flags().BoolVar(&historyClearForce, "force", false, "Skip confirmation prompt")
}

const historyDisabledMsg = "History is disabled. Set history.enabled in the config file to record reports."

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear the generation history",
	Long: `The history records the strength report of each generated password:
mode, length, entropy, score and deductions. Passwords are never stored.

Enable it in the config file:
  history:
    enabled: true`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent history entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		if store == nil {
			fmt.Fprintln(cmd.OutOrStdout(), historyDisabledMsg)
			return nil
		}
		defer store.Close()

		entries, err := store.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}

		switch strings.ToLower(historyFormat) {
		case report.FormatJSON:
			return writeHistoryJSON(cmd.OutOrStdout(), entries)
		case report.FormatText, "":
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No history entries.")
				return nil
			}
			return writeHistoryTable(cmd.OutOrStdout(), entries)
		default:
			return fmt.Errorf("unknown output format %q: must be text or json", historyFormat)
		}
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all history entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.History.Enabled {
			fmt.Fprintln(cmd.OutOrStdout(), historyDisabledMsg)
			return nil
		}

		if !historyClearForce {
			ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), "Delete all history entries? [y/N]: ")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.ErrOrStderr(), "Aborted.")
				return nil
			}
		}

		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		removed, err := store.Clear(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d history entries.\n", removed)
		return nil
	},
}

func writeHistoryJSON(w io.Writer, entries []history.Entry) error {
	if entries == nil {
		entries = []history.Entry{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

func writeHistoryTable(w io.Writer, entries []history.Entry) error {
	table := tablewriter.NewWriter(w)
	table.Header("CREATED", "SOURCE", "MODE", "LENGTH", "ENTROPY", "SCORE", "STRENGTH")

	for _, e := range entries {
		if err := table.Append(
			e.CreatedAt.Local().Format(time.DateTime),
			e.Source,
			e.Mode.String(),
			strconv.Itoa(e.Length),
			fmt.Sprintf("%.2f", e.EntropyBits),
			strconv.Itoa(e.Score),
			e.Label.String(),
		); err != nil {
			return err
		}
	}

	return table.Render()
}

// confirm prompts on out and reports whether the answer on in starts with y.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read input: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
