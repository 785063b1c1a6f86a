package main

import (
	"fmt"
	"os"

	"github.com/snic-labs/policy-api/internal/tools/blacklistctl"
)

func main() {
	if err := blacklistctl.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(blacklistctl.ExitCode(err))
	}
}
