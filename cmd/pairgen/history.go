package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pairgen/pairgen/pkg/history"
	"github.com/pairgen/pairgen/pkg/presenter"
)

// HistoryListConfig holds configuration for the history list command
type HistoryListConfig struct {
	Limit      int
	JSONOutput bool
}

// NewHistoryListConfig creates a new HistoryListConfig with default values
func NewHistoryListConfig() *HistoryListConfig {
	return &HistoryListConfig{
		Limit: history.DefaultListLimit,
	}
}

// HistoryShowConfig holds configuration for the history show command
type HistoryShowConfig struct {
	JSONOutput bool
	Suite      bool
}

// NewHistoryShowConfig creates a new HistoryShowConfig with default values
func NewHistoryShowConfig() *HistoryShowConfig {
	return &HistoryShowConfig{}
}

// HistoryPruneConfig holds configuration for the history prune command
type HistoryPruneConfig struct {
	Keep      int
	NoConfirm bool
}

// NewHistoryPruneConfig creates a new HistoryPruneConfig with default values
func NewHistoryPruneConfig() *HistoryPruneConfig {
	return &HistoryPruneConfig{
		Keep: history.DefaultListLimit,
	}
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded generation runs",
	Long:  `List, inspect, and prune the local history of generation runs.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded generation runs",
	Long:  `List recorded generation runs, newest first.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		config := getHistoryListConfigFromFlags(cmd)

		store, err := openHistoryStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.List(ctx, config.Limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			presenter.Info("No generation runs recorded yet.")
			return nil
		}

		format := TableFormat
		if config.JSONOutput {
			format = JSONFormat
		}
		output := NewHistoryListOutput(runs, format)
		return output.Render(os.Stdout)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [runID]",
	Short: "Show a recorded generation run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		config := getHistoryShowConfigFromFlags(cmd)

		store, err := openHistoryStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.Get(ctx, args[0])
		if err != nil {
			return err
		}

		if config.Suite {
			fmt.Print(run.SuiteJSON)
			return nil
		}
		if config.JSONOutput {
			jsonData, err := json.MarshalIndent(run, "", "  ")
			if err != nil {
				return errors.Wrap(err, "error generating JSON output")
			}
			fmt.Println(string(jsonData))
			return nil
		}

		displayRun(run)
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old generation runs",
	Long:  `Delete recorded runs beyond the newest --keep entries.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		config := getHistoryPruneConfigFromFlags(cmd)

		if !config.NoConfirm {
			response := presenter.Prompt(fmt.Sprintf("Prune run history, keeping the newest %d runs?", config.Keep), "y", "N")
			if response != "y" && response != "Y" {
				presenter.Info("Prune cancelled.")
				return nil
			}
		}

		store, err := openHistoryStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		deleted, err := store.Prune(ctx, config.Keep)
		if err != nil {
			return err
		}
		presenter.Success(fmt.Sprintf("Deleted %d runs, kept the newest %d", deleted, config.Keep))
		return nil
	},
}

func init() {
	historyCmd.PersistentFlags().String("db-path", "", "Path to the history database (default: ~/.pairgen/history.db)")
	viper.BindPFlag("history.path", historyCmd.PersistentFlags().Lookup("db-path"))

	// Add list command flags
	listDefaults := NewHistoryListConfig()
	historyListCmd.Flags().Int("limit", listDefaults.Limit, "Maximum number of runs to display")
	historyListCmd.Flags().Bool("json", listDefaults.JSONOutput, "Output in JSON format")

	// Add show command flags
	showDefaults := NewHistoryShowConfig()
	historyShowCmd.Flags().Bool("json", showDefaults.JSONOutput, "Output in JSON format")
	historyShowCmd.Flags().Bool("suite", showDefaults.Suite, "Print the stored suite JSON instead of run metadata")

	// Add prune command flags
	pruneDefaults := NewHistoryPruneConfig()
	historyPruneCmd.Flags().Int("keep", pruneDefaults.Keep, "Number of most recent runs to keep")
	historyPruneCmd.Flags().Bool("no-confirm", pruneDefaults.NoConfirm, "Skip confirmation prompt")

	// Add subcommands
	historyCmd.AddCommand(withTracing(historyListCmd))
	historyCmd.AddCommand(withTracing(historyShowCmd))
	historyCmd.AddCommand(withTracing(historyPruneCmd))
}

// getHistoryListConfigFromFlags extracts list configuration from command flags
func getHistoryListConfigFromFlags(cmd *cobra.Command) *HistoryListConfig {
	config := NewHistoryListConfig()

	if limit, err := cmd.Flags().GetInt("limit"); err == nil {
		config.Limit = limit
	}
	if jsonOutput, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSONOutput = jsonOutput
	}

	return config
}

// getHistoryShowConfigFromFlags extracts show configuration from command flags
func getHistoryShowConfigFromFlags(cmd *cobra.Command) *HistoryShowConfig {
	config := NewHistoryShowConfig()

	if jsonOutput, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSONOutput = jsonOutput
	}
	if suite, err := cmd.Flags().GetBool("suite"); err == nil {
		config.Suite = suite
	}

	return config
}

// getHistoryPruneConfigFromFlags extracts prune configuration from command flags
func getHistoryPruneConfigFromFlags(cmd *cobra.Command) *HistoryPruneConfig {
	config := NewHistoryPruneConfig()

	if keep, err := cmd.Flags().GetInt("keep"); err == nil {
		config.Keep = keep
	}
	if noConfirm, err := cmd.Flags().GetBool("no-confirm"); err == nil {
		config.NoConfirm = noConfirm
	}

	return config
}

func openHistoryStore(ctx context.Context) (*history.Store, error) {
	return history.Open(ctx, viper.GetString("history.path"))
}

// HistoryListOutput represents the output for history list
type HistoryListOutput struct {
	Runs   []history.Run
	Format OutputFormat
}

// NewHistoryListOutput creates a new HistoryListOutput
func NewHistoryListOutput(runs []history.Run, format OutputFormat) *HistoryListOutput {
	return &HistoryListOutput{
		Runs:   runs,
		Format: format,
	}
}

// Render formats and renders the run list to the specified writer
func (o *HistoryListOutput) Render(w io.Writer) error {
	if o.Format == JSONFormat {
		return o.renderJSON(w)
	}
	return o.renderTable(w)
}

func (o *HistoryListOutput) renderJSON(w io.Writer) error {
	type jsonOutput struct {
		Runs []history.Run `json:"runs"`
	}

	jsonData, err := json.MarshalIndent(jsonOutput{Runs: o.Runs}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "error generating JSON output")
	}

	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

func (o *HistoryListOutput) renderTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "ID\tCreated\tModel\tSeed\tRows\tCoverage\tDuration")
	fmt.Fprintln(tw, "--\t-------\t-----\t----\t----\t--------\t--------")

	for _, run := range o.Runs {
		model := run.ModelName
		if model == "" {
			model = run.ModelPath
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.1f%%\t%dms\n",
			run.ID,
			run.CreatedAt.Format(time.RFC3339),
			model,
			run.Seed,
			run.RowCount,
			run.Coverage(),
			run.DurationMS,
		)
	}

	return tw.Flush()
}

// displayRun renders one run in a readable text format
func displayRun(run *history.Run) {
	presenter.Section(fmt.Sprintf("Run %s", run.ID))
	presenter.Info(fmt.Sprintf("Created: %s", run.CreatedAt.Format(time.RFC3339)))
	presenter.Info(fmt.Sprintf("Model: %s (hash %s)", run.ModelPath, run.ModelHash))
	if run.ModelName != "" {
		presenter.Info(fmt.Sprintf("Name: %s", run.ModelName))
	}
	presenter.Info(fmt.Sprintf("Seed: %d", run.Seed))
	presenter.Info(fmt.Sprintf("Rows: %d", run.RowCount))
	presenter.Info(fmt.Sprintf("Pairs covered: %d/%d (%.1f%%)", run.PairsCovered, run.PairsTotal, run.Coverage()))
	if run.Uncoverable > 0 {
		presenter.Warning(fmt.Sprintf("Uncoverable pairs: %d", run.Uncoverable))
	}
	presenter.Info(fmt.Sprintf("Duration: %dms", run.DurationMS))
}
