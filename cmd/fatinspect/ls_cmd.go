package main

import (
	"github.com/aligator/fatinspect"
	"github.com/spf13/cobra"
)

// createLsCommand creates the ls subcommand
func createLsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [flags] [IMAGE_FILE]",
		Short: "lists the entries of the root directory",
		Long: `Ls prints one line per file and directory of the root
directory with mode, size, modification time, first cluster and
the long name if there is one. Volume labels are left out.`,
		Args: cobra.MaximumNArgs(1),
		RunE: executeLs,
	}
}

// executeLs handles the ls command execution logic
func executeLs(cmd *cobra.Command, args []string) error {
	report, err := inspect(cmd, args)
	if err != nil {
		return err
	}

	entries := report.Entries()
	if entries == nil {
		entries = []fatinspect.Entry{}
	}

	return writeResult(cmd, entries, func() {
		fatinspect.PrintEntries(cmd.OutOrStdout(), entries)
	})
}
