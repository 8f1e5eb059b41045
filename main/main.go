package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// set with -ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ftppush",
		Short: "Push local files to a remote directory over FTP or SFTP",
		Long: "ftppush uploads a list of local files into a remote directory over FTP or SFTP.\n" +
			"Passwords not given on the command line are read from the OS keyring, keyed by host and user.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newPushCmd(&pushFlags{}))
	rootCmd.AddCommand(newSecretCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ftppush %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
			fmt.Fprintf(out, "  go:     %s\n", runtime.Version())
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
