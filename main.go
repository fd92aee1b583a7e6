// Package main is the entry point for the smitemetrics CLI tool, which
// parses SMITE 2 combat log files and computes player performance metrics.
package main

import "github.com/pable/go-smite-metrics/cmd"

func main() {
	cmd.Execute()
}
