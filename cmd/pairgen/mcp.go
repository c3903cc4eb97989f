package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pairgen/pairgen/pkg/generator"
	"github.com/pairgen/pairgen/pkg/logger"
	"github.com/pairgen/pairgen/pkg/model"
	"github.com/pairgen/pairgen/pkg/modelfile"
	"github.com/pairgen/pairgen/pkg/pairs"
	"github.com/pairgen/pairgen/pkg/render"
	"github.com/pairgen/pairgen/pkg/version"
)

const mcpInstructions = `Pairgen generates compact pairwise covering test suites. Pass a model in
the plain-text format: one "Name: value1, value2" line per parameter, a
blank line, then optional constraint lines each ending with ";", e.g.
IF [OS] = "win11" THEN [Browser] <> "safari";. Generation is
deterministic for a given model and seed. Use validate_model to check a
model before generating.`

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run pairgen as an MCP server over stdio",
	Long: `Run pairgen as a Model Context Protocol (MCP) server communicating
over stdio, exposing generate_tests and validate_model tools so agent
clients can build and check pairwise models.

Example client configuration:
  {"command": "pairgen", "args": ["mcp"]}`,
	RunE: runMCPServer,
}

func runMCPServer(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// Stdout carries the protocol; all diagnostics go to stderr.
	logger.SetLogOutput(os.Stderr)

	s := server.NewMCPServer(
		"pairgen",
		version.Get().Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(mcpInstructions),
	)

	s.AddTool(newGenerateTestsTool(), handleGenerateTests)
	s.AddTool(newValidateModelTool(), handleValidateModel)

	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.G(ctx).Info("starting MCP server on stdio")

	stdio := server.NewStdioServer(s)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- stdio.Listen(ctx, os.Stdin, os.Stdout)
	}()

	select {
	case err := <-serverErr:
		if err != nil && ctx.Err() == nil {
			return errors.Wrap(err, "mcp server failed")
		}
	case <-ctx.Done():
	}

	logger.G(ctx).Info("MCP server stopped")
	return nil
}

func newGenerateTestsTool() mcp.Tool {
	return mcp.NewTool("generate_tests",
		mcp.WithDescription("Generate a pairwise covering test suite from a parameter model. Returns a compact set of test rows in which every valid pair of parameter values appears at least once."),
		mcp.WithString("model",
			mcp.Required(),
			mcp.Description("Model text: one 'Name: value1, value2' line per parameter, a blank line, then optional constraint lines ending with ';'"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: markdown, csv, or json (default markdown)"),
		),
		mcp.WithNumber("seed",
			mcp.Description("Random seed; the same model and seed reproduce the suite"),
		),
		mcp.WithNumber("candidates",
			mcp.Description("Candidate rows scored per round; higher is slower and slightly smaller"),
		),
	)
}

func newValidateModelTool() mcp.Tool {
	return mcp.NewTool("validate_model",
		mcp.WithDescription("Check a parameter model without generating tests: parses the parameters and constraints and reports every problem found."),
		mcp.WithString("model",
			mcp.Required(),
			mcp.Description("Model text: one 'Name: value1, value2' line per parameter, a blank line, then optional constraint lines ending with ';'"),
		),
	)
}

// generateTestsArgs are the arguments of the generate_tests tool.
type generateTestsArgs struct {
	Model      string `mapstructure:"model"`
	Format     string `mapstructure:"format"`
	Seed       int64  `mapstructure:"seed"`
	Candidates int    `mapstructure:"candidates"`
}

// validateModelArgs are the arguments of the validate_model tool.
type validateModelArgs struct {
	Model string `mapstructure:"model"`
}

// decodeToolArgs decodes MCP tool arguments into a typed struct. JSON
// numbers arrive as float64, so decoding is weakly typed.
func decodeToolArgs(input any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create argument decoder")
	}
	if err := decoder.Decode(input); err != nil {
		return errors.Wrap(err, "invalid tool arguments")
	}
	return nil
}

func handleGenerateTests(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args generateTestsArgs
	if err := decodeToolArgs(req.Params.Arguments, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if args.Model == "" {
		return mcp.NewToolResultError("model is required"), nil
	}

	format := render.Format(args.Format)
	if args.Format == "" {
		format = render.FormatMarkdown
	}
	switch format {
	case render.FormatMarkdown, render.FormatCSV, render.FormatJSON:
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q (expected markdown, csv, or json)", args.Format)), nil
	}

	m, universe, err := compileModelText(args.Model)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	suite, err := generator.Generate(ctx, m, universe, generator.Options{
		Seed:       args.Seed,
		Candidates: args.Candidates,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := render.Suite(suite, format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString(out)
	if len(suite.Uncoverable) > 0 {
		fmt.Fprintf(&b, "\n%d pairs cannot be covered by any constraint-valid row:\n", len(suite.Uncoverable))
		for _, p := range suite.Uncoverable {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	fmt.Fprintf(&b, "\n%d rows cover %d/%d pairs (seed %d).\n",
		len(suite.Rows), suite.PairsCovered, suite.PairsTotal, suite.Seed)

	return mcp.NewToolResultText(b.String()), nil
}

func handleValidateModel(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args validateModelArgs
	if err := decodeToolArgs(req.Params.Arguments, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if args.Model == "" {
		return mcp.NewToolResultError("model is required"), nil
	}

	m, universe, err := compileModelText(args.Model)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Model is valid: %d parameters, %d constraints, %d pairs to cover (%d excluded by constraints).",
		m.Len(), len(m.Constraints()), universe.Count(), universe.Excluded(),
	)), nil
}

// compileModelText parses plain-text model content and enumerates its pair
// universe.
func compileModelText(text string) (*model.Model, *pairs.Universe, error) {
	doc, err := modelfile.ParseText(text)
	if err != nil {
		return nil, nil, err
	}
	m, err := doc.Compile()
	if err != nil {
		return nil, nil, err
	}
	universe, err := pairs.Build(m, pairs.Options{})
	if err != nil {
		return nil, nil, err
	}
	return m, universe, nil
}
