// Package cmd assembles the primedesign cobra command tree.
package cmd

import "github.com/spf13/cobra"

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "primedesign",
	Short: `primedesign

Design PCR primer pairs for a target genomic interval, screening candidates
against known variation, off-target genomic hits, and primer-primer
heterodimers.`,
	Version: "0.1.0",
}
