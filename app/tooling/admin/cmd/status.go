package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current target and round summary.",
	Run:   statusRun,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/node/status", url))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var status struct {
		Target string `json:"target"`
		Active bool   `json:"active"`
		Points int    `json:"points"`
		Posses int    `json:"posses"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Target:", status.Target)
	fmt.Println("Round active:", status.Active)
	fmt.Println("Round points:", status.Points)
	fmt.Println("Posses with bids:", status.Posses)
}
