package main

import (
	"shift-redeemer/cmd/shift-cli/commands"
	"shift-redeemer/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
