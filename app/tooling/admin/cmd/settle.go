package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var settleCmd = &cobra.Command{
	Use:   "settle",
	Short: "Settle the current auction round.",
	Run:   settleRun,
}

func init() {
	rootCmd.AddCommand(settleCmd)
}

func settleRun(cmd *cobra.Command, args []string) {
	resp, err := http.Post(fmt.Sprintf("%s/v1/auction/settle", url), "application/json", nil)
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var er struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
			log.Fatal(err)
		}
		log.Fatalf("settle failed: %s", er.Error)
	}

	var result struct {
		Posse  string `json:"posse"`
		Points int    `json:"points"`
		Debits int    `json:"debits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s wins %d points, %d coins spent\n", result.Posse, result.Points, result.Debits)
}
