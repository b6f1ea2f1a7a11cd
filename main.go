package main

import (
	"fmt"
	"os"

	"fjacquet/finsort/cmd/classify"
	"fjacquet/finsort/cmd/options"
	"fjacquet/finsort/cmd/pivot"
	"fjacquet/finsort/cmd/root"
	"fjacquet/finsort/cmd/serve"
)

func init() {
	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(classify.Cmd)
	root.Cmd.AddCommand(pivot.Cmd)
	root.Cmd.AddCommand(options.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
