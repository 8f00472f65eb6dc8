package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open a fresh auction round.",
	Run:   openRun,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func openRun(cmd *cobra.Command, args []string) {
	resp, err := http.Post(fmt.Sprintf("%s/v1/auction/open", url), "application/json", nil)
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("open failed: status %d", resp.StatusCode)
	}

	fmt.Println("round opened")
}
