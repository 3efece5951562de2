package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"smartwallet-core/internal/service"
)

// newCmd generates a fresh wallet locally; nothing leaves the machine.
var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new wallet",
	Long:  `Generates a new random BIP-39 mnemonic and shows the derived gateway session key address.`,
	Run: func(cmd *cobra.Command, args []string) {
		keys := service.NewKeyService()

		mnemonic, err := keys.GenerateMnemonic()
		if err != nil {
			fmt.Printf("generating mnemonic failed: %v\n", err)
			return
		}

		key, err := keys.SessionKey(mnemonic, "")
		if err != nil {
			fmt.Printf("deriving session key failed: %v\n", err)
			return
		}

		fmt.Println("---------------------------------------------------")
		fmt.Printf("Mnemonic:\n%s\n", mnemonic)
		fmt.Println("---------------------------------------------------")
		fmt.Printf("Session key address: %s\n", key.Address)
		fmt.Println("---------------------------------------------------")
		fmt.Println("Keep the mnemonic safe. Anyone holding it controls the wallet.")
		fmt.Println("Export it as WALLET_MNEMONIC before starting wallet-server.")
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}
