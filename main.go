// Package main is the entry point for the pscan CLI.
package main

import "pscan.dev/pkg/pscan/cmd"

func main() {
	cmd.Execute()
}
