package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobbmapper/jobbmapper-api/internal/pkg/config"
	"github.com/jobbmapper/jobbmapper-api/internal/pkg/logging"
)

var (
	cfg        *config.Config
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "jobbctl",
	Short: "Operator tool for the Jobb Mapper API",
	Long:  `Warm the municipality cache, run viewport queries offline and follow live search events.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load("jobbctl")
		if err != nil {
			return err
		}
		cfg = c

		level := "warn"
		if verbose {
			level = "debug"
		}
		logging.Setup("jobbctl", level, "text")
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(newFetchCmd(), newQueryCmd(), newMunicipalitiesCmd(), newRegionsCmd(), newTailCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
