// Package cli exposes the journey and stations commands on the command line.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/dharmasatrya/trainsearch/internal/command"
	"github.com/dharmasatrya/trainsearch/internal/models"
	"github.com/dharmasatrya/trainsearch/internal/parser"
)

// Commands is the part of command.Service the CLI drives.
type Commands interface {
	Journey(ctx context.Context, text string) (*command.JourneyResult, error)
	Stations(ctx context.Context, query string, limit int) (*command.StationsResult, error)
}

var (
	commandService Commands
	serviceErr     error
)

var rootCmd = &cobra.Command{
	Use:           "trainsearch",
	Short:         "Look up UK train departures",
	Long:          command.HelpMessage,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// SetService installs the service the commands run against. err, when
// set, is reported by every command that needs the service.
func SetService(svc Commands, err error) {
	commandService = svc
	serviceErr = err
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func service() (Commands, error) {
	if serviceErr != nil {
		return nil, serviceErr
	}
	if commandService == nil {
		return nil, errors.New("rail service not configured")
	}
	return commandService, nil
}

// isReply reports whether err is meant to be shown to the user as the
// command's answer.
func isReply(err error) bool {
	var (
		validation models.ValidationError
		notFound   models.NotFoundError
		parseErr   *parser.ParseError
		stageErr   *command.StageError
	)
	return errors.As(err, &validation) ||
		errors.As(err, &notFound) ||
		errors.As(err, &parseErr) ||
		errors.As(err, &stageErr)
}
