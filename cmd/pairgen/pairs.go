package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pairgen/pairgen/pkg/modelfile"
	"github.com/pairgen/pairgen/pkg/pairs"
	"github.com/pairgen/pairgen/pkg/presenter"
)

// OutputFormat defines the format of command output
type OutputFormat int

const (
	TableFormat OutputFormat = iota
	JSONFormat
)

// PairsConfig holds configuration for the pairs command
type PairsConfig struct {
	Param      string
	Ceiling    int
	List       bool
	JSONOutput bool
}

// NewPairsConfig creates a new PairsConfig with default values
func NewPairsConfig() *PairsConfig {
	return &PairsConfig{}
}

var pairsCmd = &cobra.Command{
	Use:   "pairs [model file]",
	Short: "Inspect the pair universe of a model",
	Long: `Enumerate the pair universe a model produces: the total candidate
combinations, how many the constraints exclude, and the pairs the
generator must cover.

The per-pair listing is printed with --list, or when --param filters
pairs by parameter name (glob patterns accepted, e.g. 'net*').`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := getPairsConfigFromFlags(cmd)

		universe, err := buildUniverse(args[0], config.Ceiling)
		if err != nil {
			return err
		}

		list := universe.Pairs()
		if config.Param != "" {
			g, err := glob.Compile(config.Param)
			if err != nil {
				return errors.Wrapf(err, "invalid --param pattern %q", config.Param)
			}
			filtered := list[:0]
			for _, p := range list {
				if g.Match(p.Param1) || g.Match(p.Param2) {
					filtered = append(filtered, p)
				}
			}
			list = filtered
		}

		format := TableFormat
		if config.JSONOutput {
			format = JSONFormat
		}
		showList := config.List || config.Param != ""

		output := NewPairsOutput(universe, list, showList, format)
		return output.Render(os.Stdout)
	},
}

func init() {
	defaults := NewPairsConfig()
	pairsCmd.Flags().String("param", defaults.Param, "List only pairs touching parameters matching this glob")
	pairsCmd.Flags().Int("ceiling", defaults.Ceiling, fmt.Sprintf("Maximum pair combinations a model may produce (default %d)", pairs.DefaultCeiling))
	pairsCmd.Flags().Bool("list", defaults.List, "List every pair in the universe")
	pairsCmd.Flags().Bool("json", defaults.JSONOutput, "Output in JSON format")
}

// getPairsConfigFromFlags extracts pairs configuration from command flags
func getPairsConfigFromFlags(cmd *cobra.Command) *PairsConfig {
	config := NewPairsConfig()

	if param, err := cmd.Flags().GetString("param"); err == nil {
		config.Param = param
	}
	if ceiling, err := cmd.Flags().GetInt("ceiling"); err == nil {
		config.Ceiling = ceiling
	}
	if list, err := cmd.Flags().GetBool("list"); err == nil {
		config.List = list
	}
	if jsonOutput, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSONOutput = jsonOutput
	}

	return config
}

// buildUniverse loads a model file and enumerates its pair universe.
func buildUniverse(path string, ceiling int) (*pairs.Universe, error) {
	doc, err := modelfile.Load(path)
	if err != nil {
		return nil, err
	}
	m, err := doc.Compile()
	if err != nil {
		return nil, errors.Wrapf(err, "invalid model %s", path)
	}
	universe, err := pairs.Build(m, pairs.Options{Ceiling: ceiling})
	if err != nil {
		return nil, errors.Wrapf(err, "building pair universe for %s", path)
	}
	return universe, nil
}

// PairsOutput represents the output of the pairs command
type PairsOutput struct {
	Combinations int          `json:"combinations"`
	Included     int          `json:"included"`
	Excluded     int          `json:"excluded"`
	Pairs        []pairs.Pair `json:"pairs,omitempty"`

	format   OutputFormat
	showList bool
}

// NewPairsOutput creates a new PairsOutput
func NewPairsOutput(u *pairs.Universe, list []pairs.Pair, showList bool, format OutputFormat) *PairsOutput {
	output := &PairsOutput{
		Combinations: u.Combinations(),
		Included:     u.Count(),
		Excluded:     u.Excluded(),
		format:       format,
		showList:     showList,
	}
	if showList {
		output.Pairs = list
	}
	return output
}

// Render formats and renders the pair universe to the specified writer
func (o *PairsOutput) Render(w io.Writer) error {
	if o.format == JSONFormat {
		return o.renderJSON(w)
	}
	return o.renderTable(w)
}

func (o *PairsOutput) renderJSON(w io.Writer) error {
	jsonData, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return errors.Wrap(err, "error generating JSON output")
	}

	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

func (o *PairsOutput) renderTable(w io.Writer) error {
	presenter.Section("Pair Universe")
	presenter.Info(fmt.Sprintf("Candidate combinations: %d", o.Combinations))
	presenter.Info(fmt.Sprintf("Excluded by constraints: %d", o.Excluded))
	presenter.Info(fmt.Sprintf("Pairs to cover: %d", o.Included))

	if !o.showList {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PARAMETER\tVALUE\tPARAMETER\tVALUE")
	fmt.Fprintln(tw, "---------\t-----\t---------\t-----")
	for _, p := range o.Pairs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Param1, p.Value1, p.Param2, p.Value2)
	}
	return tw.Flush()
}
