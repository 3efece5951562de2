package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	sendTo    string
	sendValue string
	sendToken string
	sendP2P   bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send funds from the active account",
	Long: `Submits a single-transaction batch through the gateway, or a
payment-channel top-up with --p2p. Values are in base units (wei-like).`,
	Run: func(cmd *cobra.Command, args []string) {
		var submitted struct {
			Hash string `json:"hash"`
		}

		var err error
		if sendP2P {
			err = callServer("POST", "/api/v1/wallet/send-payment", map[string]interface{}{
				"recipient": sendTo,
				"token":     sendToken,
				"value":     sendValue,
			}, &submitted)
		} else {
			err = callServer("POST", "/api/v1/wallet/send", map[string]interface{}{
				"transactions": []map[string]interface{}{
					{
						"to":            sendTo,
						"value":         sendValue,
						"token_address": sendToken,
					},
				},
			}, &submitted)
		}
		if err != nil {
			fmt.Printf("send failed: %v\n", err)
			return
		}

		fmt.Printf("accepted, gateway hash: %s\n", submitted.Hash)
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendTo, "to", "", "recipient address")
	sendCmd.Flags().StringVar(&sendValue, "value", "", "amount in base units")
	sendCmd.Flags().StringVar(&sendToken, "token", "", "token contract address, empty for the native currency")
	sendCmd.Flags().BoolVar(&sendP2P, "p2p", false, "send through a payment channel instead of on-chain")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("value")
	rootCmd.AddCommand(sendCmd)
}
