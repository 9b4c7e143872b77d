// Command leveltool creates, edits, checks and publishes level files.
//
//	leveltool [-config file] [-v] <command> [flags] [args]
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
