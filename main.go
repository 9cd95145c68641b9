package main

import (
	"os"

	"github.com/fieldside/cricket-pipeline-workflow/internal/cli/cmd"
	"github.com/fieldside/cricket-pipeline-workflow/internal/cli/runner"
)

// Version information, overridable at build time via -ldflags.
var (
	version   = "dev"
	gitCommit = ""
	buildDate = ""
)

func main() {
	cmd.SetVersionInfo(version, gitCommit, buildDate)
	cmd.SetFactories(runner.Factories{
		CreateSourceAdapter: CreateSourceAdapterFunc,
		CreateProcessor:     CreateProcessorFunc,
		CreateConsumer:      CreateConsumerFunc,
	})

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
