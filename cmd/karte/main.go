// Package main provides the karte CLI.
package main

import "github.com/mesh-intelligence/karte/internal/cli"

func main() {
	cli.Execute()
}
