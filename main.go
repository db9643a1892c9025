// main is the entrypoint for the contacts CLI.
package main

import (
	"github.com/huangsam/contacts/cmd"
	"github.com/huangsam/contacts/internal/contract"
)

func main() {
	defer cmd.Close()
	if err := cmd.Execute(); err != nil {
		cmd.Close()
		contract.LogFatal("Error", err)
	}
}
