package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newJSONSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "jsonschema",
		Short: "Print the schema as JSON Schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.schema()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(s.JSONSchema())
		},
	}
}
