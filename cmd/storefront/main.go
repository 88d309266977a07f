package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront API: waitlist, checkout verification and tokenized downloads",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (default: search current and parent directories)")

	serve := serveCmd(&envFile)
	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(migrateCmd(&envFile))

	// Running the binary without a subcommand starts the server.
	rootCmd.RunE = serve.RunE
	return rootCmd
}
