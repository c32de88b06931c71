package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dharmasatrya/trainsearch/internal/models"
)

var stationsLimit int

var stationsCmd = &cobra.Command{
	Use:   "stations <search term>",
	Short: "Find station codes matching a name",
	RunE:  runStations,
}

func init() {
	stationsCmd.Flags().IntVarP(&stationsLimit, "limit", "n", 5, "maximum number of stations")
	rootCmd.AddCommand(stationsCmd)
}

func runStations(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" {
		fmt.Fprintln(cmd.OutOrStdout(), models.ErrMissingStationQuery.Error())
		return nil
	}

	svc, err := service()
	if err != nil {
		return err
	}

	result, err := svc.Stations(cmd.Context(), query, stationsLimit)
	if err != nil {
		if isReply(err) {
			fmt.Fprintln(cmd.OutOrStdout(), err.Error())
			return nil
		}
		return fmt.Errorf("station search failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Reply)
	return nil
}
