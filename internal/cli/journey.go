package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dharmasatrya/trainsearch/internal/models"
)

var journeyJSON bool

var journeyCmd = &cobra.Command{
	Use:   "journey <origin> to <destination> [at HH:MM]",
	Short: "Show the next departures between two stations",
	Long: `Resolves origin and destination against the configured rail data
providers and lists upcoming departures, e.g.

  trainsearch journey Leeds to York at 09:15`,
	RunE: runJourney,
}

func init() {
	journeyCmd.Flags().BoolVar(&journeyJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(journeyCmd)
}

func runJourney(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(cmd.OutOrStdout(), models.ErrMissingJourney.Error())
		return nil
	}

	svc, err := service()
	if err != nil {
		return err
	}

	result, err := svc.Journey(cmd.Context(), text)
	if err != nil {
		if isReply(err) {
			fmt.Fprintln(cmd.OutOrStdout(), err.Error())
			return nil
		}
		return fmt.Errorf("journey failed: %w", err)
	}

	if journeyJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Reply)
	return nil
}
