// Package main is the entry point for the treedelta CLI.
package main

import "treedelta.dev/pkg/treedelta/cmd"

func main() {
	cmd.Execute()
}
