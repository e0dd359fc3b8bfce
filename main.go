package main

import "github.com/kamal-hamza/nfts-cli/cmd"

func main() {
	cmd.Execute()
}
