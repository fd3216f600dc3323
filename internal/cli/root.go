package cli

import (
	"fmt"
	"os"

	"github.com/klokku/calinvoice/internal/app"
	"github.com/klokku/calinvoice/internal/config"
	"github.com/klokku/calinvoice/internal/tui"
	"github.com/klokku/calinvoice/pkg/daterange"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	year       int
	month      string
)

var rootCmd = &cobra.Command{
	Use:   "calinvoice",
	Short: "Turn Google Calendar events into a monthly invoice CSV",
	Long: `calinvoice signs in to Google Calendar, loads the events of a month and turns every
color-tagged event into an invoice line. The color tag selects the hourly rate and the
event summary "Client-SubClient" names who is billed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runInteractive,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config/application.yaml", "path to the YAML configuration file")
	rootCmd.PersistentFlags().IntVarP(&year, "year", "y", 0, "year to invoice (defaults to the current year)")
	rootCmd.PersistentFlags().StringVarP(&month, "month", "m", "", "month to invoice, by name or number")

	rootCmd.AddCommand(exportCmd)
}

func loadApplication() (*app.Application, config.Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, cfg, err
	}
	application, err := app.NewApplication(cfg, nil)
	if err != nil {
		return nil, cfg, err
	}
	return application, cfg, nil
}

func applySelection(application *app.Application) error {
	if year != 0 {
		application.Controller().SelectYear(year)
	}
	if month != "" {
		m, err := daterange.ParseMonth(month)
		if err != nil {
			return err
		}
		application.Controller().SelectMonth(m)
	}
	return nil
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	application, cfg, err := loadApplication()
	if err != nil {
		return err
	}
	defer application.Close()
	if err := applySelection(application); err != nil {
		return err
	}

	// the terminal belongs to the UI, logs go to a file
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("unable to open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	application.Start()
	return tui.Run(application.Controller(), application.Export)
}
