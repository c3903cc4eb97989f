package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"

	"github.com/pairgen/pairgen/pkg/generator"
	"github.com/pairgen/pairgen/pkg/history"
	"github.com/pairgen/pairgen/pkg/logger"
	"github.com/pairgen/pairgen/pkg/modelfile"
	"github.com/pairgen/pairgen/pkg/pairs"
	"github.com/pairgen/pairgen/pkg/presenter"
	"github.com/pairgen/pairgen/pkg/render"
	"github.com/pairgen/pairgen/pkg/telemetry"
)

// GenerateConfig holds configuration for the generate command
type GenerateConfig struct {
	Options   generator.Options
	Ceiling   int
	Format    string
	Output    string
	NoHistory bool
	Strict    bool
}

// statusPresenter reports generation diagnostics on stderr, keeping suites
// piped from stdout machine readable.
var statusPresenter = presenter.NewWithOptions(os.Stderr, os.Stderr, presenter.ColorAuto)

// NewGenerateConfig creates a new GenerateConfig with default values
func NewGenerateConfig() *GenerateConfig {
	return &GenerateConfig{
		Format: string(render.FormatTable),
	}
}

var generateCmd = &cobra.Command{
	Use:   "generate [model files...]",
	Short: "Generate pairwise covering suites from model files",
	Long: `Generate a pairwise covering suite for each model file.

Model files are loaded by extension: .txt/.pict for the plain-text
parameter and constraint format, .yaml/.yml/.json for structured
documents, .md for markdown files carrying a fenced pict block.
Arguments may use glob patterns, including ** for recursive matching.

Generation is deterministic: the same model and seed always produce
the same suite. Each run is recorded in the local history database
unless --no-history is set.

Examples:
  pairgen generate model.txt
  pairgen generate --seed 7 --format csv -o suite.csv model.yaml
  pairgen generate 'models/**/*.pict'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		config := getGenerateConfigFromFlags(cmd)

		paths, err := expandModelPaths(args)
		if err != nil {
			return err
		}
		if config.Output != "" && len(paths) > 1 {
			return errors.Errorf("--output accepts a single model file, got %d", len(paths))
		}

		format := render.Format(config.Format)
		for i, path := range paths {
			if i > 0 && config.Output == "" {
				fmt.Println()
			}
			if err := generateOne(ctx, path, config, format); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	defaults := NewGenerateConfig()
	generateCmd.Flags().Int64("seed", 0, "Random seed; identical model and seed reproduce the suite")
	generateCmd.Flags().Int("candidates", 0, fmt.Sprintf("Candidate rows scored per round (default %d)", generator.DefaultCandidates))
	generateCmd.Flags().Int("max-stale-rounds", 0, fmt.Sprintf("Zero-gain rounds tolerated before remaining pairs are reported uncoverable (default %d)", generator.DefaultMaxStaleRounds))
	generateCmd.Flags().Int("workers", 0, "Goroutines building candidate rows (default 1)")
	generateCmd.Flags().Int("ceiling", 0, fmt.Sprintf("Maximum pair combinations a model may produce (default %d)", pairs.DefaultCeiling))
	generateCmd.Flags().String("format", defaults.Format, "Output format: table, markdown, csv, or json")
	generateCmd.Flags().StringP("output", "o", "", "Write the rendered suite to a file instead of stdout")
	generateCmd.Flags().Bool("no-history", false, "Skip recording the run in the history database")
	generateCmd.Flags().Bool("strict", false, "Exit non-zero when any pair is uncoverable")

	// Config file generator block supplies defaults, the command line overrides
	viper.BindPFlag("generator.seed", generateCmd.Flags().Lookup("seed"))
	viper.BindPFlag("generator.candidates", generateCmd.Flags().Lookup("candidates"))
	viper.BindPFlag("generator.max_stale_rounds", generateCmd.Flags().Lookup("max-stale-rounds"))
	viper.BindPFlag("generator.workers", generateCmd.Flags().Lookup("workers"))
	viper.BindPFlag("generator.ceiling", generateCmd.Flags().Lookup("ceiling"))
}

// generatorOptionsFromViper reads the generator tuning block. Values flow
// from the command line when set, otherwise from the config file; zero
// values take the package defaults.
func generatorOptionsFromViper() generator.Options {
	return generator.Options{
		Seed:           viper.GetInt64("generator.seed"),
		Candidates:     viper.GetInt("generator.candidates"),
		MaxStaleRounds: viper.GetInt("generator.max_stale_rounds"),
		Workers:        viper.GetInt("generator.workers"),
	}
}

// getGenerateConfigFromFlags extracts generate configuration from command flags
func getGenerateConfigFromFlags(cmd *cobra.Command) *GenerateConfig {
	config := NewGenerateConfig()

	config.Options = generatorOptionsFromViper()
	config.Ceiling = viper.GetInt("generator.ceiling")

	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}
	if output, err := cmd.Flags().GetString("output"); err == nil {
		config.Output = output
	}
	if noHistory, err := cmd.Flags().GetBool("no-history"); err == nil {
		config.NoHistory = noHistory
	}
	if strict, err := cmd.Flags().GetBool("strict"); err == nil {
		config.Strict = strict
	}

	return config
}

// expandModelPaths resolves glob patterns in args to concrete file paths,
// preserving argument order. A pattern without metacharacters passes
// through untouched so missing-file errors surface from the loader.
func expandModelPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid glob pattern %q", arg)
		}
		if len(matches) == 0 {
			// Not a pattern, or a pattern matching nothing; keep the
			// literal path so the loader reports a useful error.
			paths = append(paths, arg)
			continue
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}

// generateOne loads one model, generates its suite, renders it, and
// records the run.
func generateOne(ctx context.Context, path string, config *GenerateConfig, format render.Format) error {
	log := logger.G(ctx).WithField("model", path)

	doc, err := modelfile.Load(path)
	if err != nil {
		return err
	}

	m, err := doc.Compile()
	if err != nil {
		return errors.Wrapf(err, "invalid model %s", path)
	}
	log.WithField("parameters", m.Len()).Debug("model compiled")

	var universe *pairs.Universe
	err = telemetry.WithSpan(ctx, "pairs.build", func(context.Context) error {
		var err error
		universe, err = pairs.Build(m, pairs.Options{Ceiling: config.Ceiling})
		return err
	}, attribute.String("model.path", path))
	if err != nil {
		return errors.Wrapf(err, "building pair universe for %s", path)
	}

	start := time.Now()
	var suite *generator.Suite
	err = telemetry.WithSpan(ctx, "generator.generate", func(ctx context.Context) error {
		var err error
		suite, err = generator.Generate(ctx, m, universe, config.Options)
		return err
	},
		attribute.Int64("generator.seed", config.Options.Seed),
		attribute.Int("pairs.total", universe.Count()),
	)
	if err != nil {
		return errors.Wrapf(err, "generating suite for %s", path)
	}
	elapsed := time.Since(start)

	out, err := render.Suite(suite, format)
	if err != nil {
		return err
	}

	if config.Output != "" {
		if err := os.WriteFile(config.Output, []byte(out), 0o644); err != nil {
			return errors.Wrapf(err, "writing suite to %s", config.Output)
		}
		presenter.Success(fmt.Sprintf("Suite written to %s", config.Output))
	} else {
		fmt.Print(out)
	}

	if len(suite.Uncoverable) > 0 {
		statusPresenter.Warning(fmt.Sprintf("%d pairs cannot be covered by any constraint-valid row:", len(suite.Uncoverable)))
		for _, p := range suite.Uncoverable {
			statusPresenter.Warning("  " + p.String())
		}
	}

	statusPresenter.Stats(&presenter.CoverageStats{
		Rows:         len(suite.Rows),
		PairsTotal:   suite.PairsTotal,
		PairsCovered: suite.PairsCovered,
		Uncoverable:  len(suite.Uncoverable),
		Duration:     elapsed,
	})

	if !config.NoHistory {
		if err := recordRun(ctx, path, doc.Name, suite, elapsed); err != nil {
			// A failed history write never fails the generation itself.
			log.WithError(err).Warn("failed to record run history")
		}
	}

	if config.Strict && len(suite.Uncoverable) > 0 {
		return errors.Errorf("%d pairs uncoverable under the model constraints", len(suite.Uncoverable))
	}
	return nil
}

// recordRun persists one generation run in the history database.
func recordRun(ctx context.Context, path, modelName string, suite *generator.Suite, elapsed time.Duration) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "rereading model file %s", path)
	}

	store, err := history.Open(ctx, viper.GetString("history.path"))
	if err != nil {
		return err
	}
	defer store.Close()

	suiteJSON, err := render.JSON(suite)
	if err != nil {
		return err
	}

	return store.Record(ctx, &history.Run{
		ModelPath:    path,
		ModelName:    modelName,
		ModelHash:    history.HashModel(src),
		Seed:         suite.Seed,
		RowCount:     len(suite.Rows),
		PairsTotal:   suite.PairsTotal,
		PairsCovered: suite.PairsCovered,
		Uncoverable:  len(suite.Uncoverable),
		DurationMS:   elapsed.Milliseconds(),
		SuiteJSON:    suiteJSON,
	})
}
