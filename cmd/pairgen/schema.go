package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pairgen/pairgen/pkg/modelfile"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema for model documents",
	Long: `Print the JSON Schema describing the YAML and JSON model document
format, suitable for editor validation and completion.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		schema, err := modelfile.Schema()
		if err != nil {
			return err
		}
		fmt.Println(string(schema))
		return nil
	},
}
