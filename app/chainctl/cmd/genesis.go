package cmd

import (
	"log"
	"net/http"

	"github.com/powlab/powchain/foundation/blockchain/block"
	"github.com/spf13/cobra"
)

var (
	algorithm  string
	difficulty uint
)

// genesisCmd starts a fresh chain with a newly mined genesis block.
var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Start a fresh chain with a new genesis block",
	Run: func(cmd *cobra.Command, args []string) {
		payload := struct {
			Algorithm  string `json:"algorithm"`
			Difficulty uint   `json:"difficulty"`
		}{
			Algorithm:  algorithm,
			Difficulty: difficulty,
		}

		var b block.Block
		if err := call(http.MethodPost, "/v1/chain/genesis", payload, &b); err != nil {
			log.Fatal(err)
		}

		if err := printJSON(b); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(genesisCmd)
	genesisCmd.Flags().StringVarP(&algorithm, "algorithm", "a", "SHA-256", "Digest algorithm to mine with.")
	genesisCmd.Flags().UintVarP(&difficulty, "difficulty", "d", 2, "Leading zero hex characters required.")
}
