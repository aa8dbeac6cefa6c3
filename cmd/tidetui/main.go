package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/spencer-p/tidechart/pkg/config"
	"github.com/spencer-p/tidechart/pkg/tides"
	"github.com/spencer-p/tidechart/pkg/tui"
)

var (
	date    string
	logFile string
)

var rootCmd = &cobra.Command{
	Use:   "tidetui",
	Short: "Show today's high and low tides in the terminal",
	Long: `Fetches NOAA high/low tide predictions for the configured station
and shows them as a table and a chart. Configuration is read from the
same environment variables as the web dashboard.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := config.Load()
		if err != nil {
			return err
		}
		closer, err := env.LogToFile(logFile)
		if err != nil {
			return err
		}
		defer closer.Close()

		m := tui.New(env.Client(), env.Station, env.Place().Location, date,
			tides.WithAnyDate(env.AnyDate))
		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	rootCmd.Flags().StringVarP(&date, "date", "d", "", "day to show as YYYY-MM-DD (default today)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file instead of discarding them")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
