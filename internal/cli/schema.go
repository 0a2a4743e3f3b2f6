package cli

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
	"github.com/stoewer/go-strcase"

	"github.com/lacquerai/abgroup/internal/pipeline"
)

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:    "schema",
	Short:  "Output the JSON schema of the run summary",
	Long:   `Output the JSON schema of the summary printed by "abgroup --output json".`,
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaBytes, err := runSummarySchema()
		if err != nil {
			return fmt.Errorf("error generating schema: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(schemaBytes))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

// runSummarySchema reflects pipeline.ExecutionResult into a JSON schema.
func runSummarySchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		KeyNamer: strcase.SnakeCase,
		Namer: func(t reflect.Type) string {
			return strcase.SnakeCase(t.Name())
		},
		ExpandedStruct: true,
	}

	schema := r.Reflect(&pipeline.ExecutionResult{})
	schema.Title = "abgroup run summary"

	return json.MarshalIndent(schema, "", "  ")
}
