package main

import "github.com/rishi7822/Finalproject/cmd/wallet-cli/cmd"

func main() {
	cmd.Execute()
}
