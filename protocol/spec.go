package protocol

import (
	"github.com/spf13/cobra"

	"github.com/datazip-inc/tap-monday/types"
)

const documentationURL = "https://developer.monday.com/api-reference"

// specCmd prints the configuration schema
var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "spec command",
	RunE: func(_ *cobra.Command, _ []string) error {
		return emit(&types.Message{
			Type: types.SpecMessage,
			Spec: map[string]any{
				"documentationUrl":        documentationURL,
				"connectionSpecification": connector.Spec(),
			},
		})
	},
}
