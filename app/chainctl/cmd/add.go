package cmd

import (
	"log"
	"net/http"

	"github.com/powlab/powchain/foundation/blockchain/block"
	"github.com/spf13/cobra"
)

var transaction string

// addCmd mines a block carrying a transaction payload onto the chain.
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Mine a block carrying a transaction onto the chain",
	Run: func(cmd *cobra.Command, args []string) {
		payload := struct {
			Transaction string `json:"transaction"`
		}{
			Transaction: transaction,
		}

		var b block.Block
		if err := call(http.MethodPost, "/v1/chain/blocks", payload, &b); err != nil {
			log.Fatal(err)
		}

		if err := printJSON(b); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&transaction, "transaction", "t", "", "Opaque transaction payload.")
}
