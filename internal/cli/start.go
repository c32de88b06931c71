package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dharmasatrya/trainsearch/internal/command"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Print the welcome message",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), command.StartMessage)
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
