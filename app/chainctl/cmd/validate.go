package cmd

import (
	"log"
	"net/http"

	"github.com/powlab/powchain/foundation/blockchain/chain"
	"github.com/spf13/cobra"
)

// validateCmd prints the per-block verdict report for the chain.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every block's hash and linkage",
	Run: func(cmd *cobra.Command, args []string) {
		var report []chain.Verdict
		if err := call(http.MethodGet, "/v1/chain/validate", nil, &report); err != nil {
			log.Fatal(err)
		}

		if err := printJSON(report); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
