package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("classinfo.cli")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "classinfo",
		Short:        "Describe compiled Java class files",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default ./classinfo.yaml)")
	rootCmd.PersistentFlags().CountP("verbose", "v", "increase log verbosity")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().String("maven-repo", defaultMavenRepo, "repository that maven:group:artifact:version inputs are fetched from")

	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newOpcodesCmd())

	return rootCmd
}
