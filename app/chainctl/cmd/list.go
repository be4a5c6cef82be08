package cmd

import (
	"log"
	"net/http"

	"github.com/powlab/powchain/foundation/blockchain/chain"
	"github.com/spf13/cobra"
)

// listCmd prints the full chain.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the full chain",
	Run: func(cmd *cobra.Command, args []string) {
		var c chain.Chain
		if err := call(http.MethodGet, "/v1/chain", nil, &c); err != nil {
			log.Fatal(err)
		}

		if err := printJSON(c); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
