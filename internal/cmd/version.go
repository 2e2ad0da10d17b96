package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the primedesign version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(RootCmd.Version)
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
