package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Sign in, load one month and write its invoice CSV without the interactive UI",
	Example: `  calinvoice export --month march --year 2024
  calinvoice export -m 3`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, _ []string) error {
	if month == "" {
		return errors.New("--month is required")
	}
	application, _, err := loadApplication()
	if err != nil {
		return err
	}
	defer application.Close()
	if err := applySelection(application); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	state := application.Controller().State()
	path, err := application.RunHeadless(ctx, cmd.OutOrStdout(), state.Year, state.Month)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Invoice written to %s\n", path)
	return nil
}
