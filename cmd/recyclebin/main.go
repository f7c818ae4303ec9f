// Package main provides the recyclebin CLI.
package main

import "github.com/mesh-intelligence/recyclebin/internal/cli"

func main() {
	cli.Execute()
}
