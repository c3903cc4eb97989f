package main

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pairgen/pairgen/pkg/modelfile"
	"github.com/pairgen/pairgen/pkg/pairs"
	"github.com/pairgen/pairgen/pkg/presenter"
)

var validateCmd = &cobra.Command{
	Use:   "validate [model files...]",
	Short: "Check model files without generating suites",
	Long: `Parse and compile each model file, reporting every problem found:
syntax errors in constraint expressions, duplicate parameters, empty
domains, constraint references to unknown parameters or values, and
models too small or too large to generate from.

All files are checked even when earlier ones fail, and the exit status
reflects the aggregate result.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := expandModelPaths(args)
		if err != nil {
			return err
		}

		var result *multierror.Error
		for _, path := range paths {
			if err := validateOne(path); err != nil {
				presenter.Error(err, fmt.Sprintf("Model %s is invalid", path))
				result = multierror.Append(result, errors.Wrap(err, path))
				continue
			}
			presenter.Success(fmt.Sprintf("Model %s is valid", path))
		}

		if err := result.ErrorOrNil(); err != nil {
			return errors.Errorf("%d of %d model files failed validation", result.Len(), len(paths))
		}
		return nil
	},
}

func validateOne(path string) error {
	doc, err := modelfile.Load(path)
	if err != nil {
		return err
	}
	m, err := doc.Compile()
	if err != nil {
		return err
	}
	// Universe construction catches what compilation cannot: fewer than
	// two parameters, or a model over the pair ceiling.
	_, err = pairs.Build(m, pairs.Options{})
	return err
}
