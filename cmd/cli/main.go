package main

import (
	"fmt"
	"os"

	"github.com/de-tools/iam-audit/pkg/runtime/terminal"
	"github.com/de-tools/iam-audit/pkg/store/records"
)

func main() {
	cli := terminal.NewCLI(terminal.Options{
		Sources: records.NewDefaultRegistry(),
		Output:  os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
