package main

import "github.com/sheikh-saqib/banking-ledger/cmd/server/commands"

func main() {
	commands.Execute()
}
