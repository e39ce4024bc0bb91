// Package main provides the entry point for the txcat CLI application.
package main

import (
	"fmt"
	"os"

	"fjacquet/txcat/cmd/batch"
	"fjacquet/txcat/cmd/categories"
	"fjacquet/txcat/cmd/categorize"
	"fjacquet/txcat/cmd/root"
	"fjacquet/txcat/internal/config"
)

func init() {
	// Load .env before viper reads the environment. A missing file is fine.
	_, _ = config.LoadEnv()

	root.Init()

	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(batch.Cmd)
	root.Cmd.AddCommand(categories.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
