package main

import (
	"context"
	"fmt"
	"os"

	"github.com/galvinograd/purple-titanium/internal/cli"
)

func main() {
	root := cli.Root()
	err := root.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(cli.ExitCode(err))
}
