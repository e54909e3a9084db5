/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/mimir/cmd/mimir/cmd"

func main() {
	cmd.Execute()
}
