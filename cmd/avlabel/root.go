// Package main provides the entry point for the avlabel CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for avlabel.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "avlabel",
		Short: "Labeling tool for per-sample JSON report datasets",
		Long: `avlabel scans a directory tree of per-sample JSON report records,
extracts a configurable subset of fields from each record, optionally
enriches each record with a malware family label from an external
AVClass-compatible classifier, and writes a sorted CSV summary plus a
structured error log.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewLabelCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
