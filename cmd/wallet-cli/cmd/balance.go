package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var balanceRefresh bool

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the active account's balances",
	Run: func(cmd *cobra.Command, args []string) {
		path := "/api/v1/wallet/balances"
		method := "GET"
		if balanceRefresh {
			path = "/api/v1/wallet/balances/refresh"
			method = "POST"
		}

		var result struct {
			Balances []struct {
				Symbol  string `json:"symbol"`
				Balance string `json:"balance"`
			} `json:"balances"`
		}
		if err := callServer(method, path, nil, &result); err != nil {
			fmt.Printf("fetching balances failed: %v\n", err)
			return
		}

		if len(result.Balances) == 0 {
			fmt.Println("no cached balances; try --refresh")
			return
		}
		for _, b := range result.Balances {
			fmt.Printf("%-8s %s\n", b.Symbol, b.Balance)
		}
	},
}

func init() {
	balanceCmd.Flags().BoolVar(&balanceRefresh, "refresh", false, "refresh from the gateway before printing")
	rootCmd.AddCommand(balanceCmd)
}
