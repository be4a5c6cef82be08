package cmd

import (
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var newDifficulty uint

// difficultyCmd signals a whole chain rebuild under a new difficulty.
var difficultyCmd = &cobra.Command{
	Use:   "difficulty",
	Short: "Re-mine the whole chain under a new difficulty",
	Run: func(cmd *cobra.Command, args []string) {
		payload := struct {
			Difficulty uint `json:"difficulty"`
		}{
			Difficulty: newDifficulty,
		}

		var resp struct {
			Status     string `json:"status"`
			Difficulty uint   `json:"difficulty"`
		}
		if err := call(http.MethodPut, "/v1/chain/difficulty", payload, &resp); err != nil {
			log.Fatal(err)
		}

		if err := printJSON(resp); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(difficultyCmd)
	difficultyCmd.Flags().UintVarP(&newDifficulty, "difficulty", "d", 2, "Leading zero hex characters required.")
}
