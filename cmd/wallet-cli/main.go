package main

import "smartwallet-core/cmd/wallet-cli/cmd"

func main() {
	cmd.Execute()
}
