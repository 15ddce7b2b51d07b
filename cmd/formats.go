package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kfreiman/office2md/internal/converter"
)

// formatsCmd represents the formats command
var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported input formats",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(converter.SupportedFormats())
		}

		for _, category := range converter.SupportedFormats() {
			fmt.Fprintf(out, "%s\n", category.Name)
			for _, format := range category.Formats {
				fmt.Fprintf(out, "  - %s\n", format)
			}
			fmt.Fprintf(out, "  extensions: %s\n\n", strings.Join(category.Extensions, ", "))
		}
		return nil
	},
}

func init() {
	formatsCmd.Flags().Bool("json", false, "Print the catalog as JSON")
	rootCmd.AddCommand(formatsCmd)
}
