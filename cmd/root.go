package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"bsprep/internal/failure"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	exitError  = 1
	exitSevere = 2
)

var (
	configPath string
	envFile    string
	debug      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bsprep",
	Short: "Prepare capabilities for BrowserStack test sessions",
	Long: `bsprep prepares WebDriver capabilities before a test run on BrowserStack:
it uploads the app under test, resolves build identifiers, and runs the
BrowserStack Local tunnel for the duration of the session.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. invalid capabilities, failed uploads)
	SilenceUsage:      true,
	PersistentPreRunE: loadEnvFile,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v // Set cobra's version field as well
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(exitCode(err))
	}
}

// exitCode maps severe errors to a distinct exit status so wrapping runners
// can abort instead of retrying.
func exitCode(err error) int {
	if failure.IsSevere(err) {
		return exitSevere
	}
	return exitError
}

// loadEnvFile loads variables from the env file into the process
// environment. Variables already set are not overridden; a missing file is
// not an error.
func loadEnvFile(cmd *cobra.Command, args []string) error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}
	return nil
}

func init() {
	rootCmd.SetVersionTemplate(`{{printf "bsprep version %s\n" .Version}}`)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newPrepareCmd())
	rootCmd.AddCommand(newCacheCmd())

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default: layered ~/.config/bsprep/config.yaml and ./.bsprep/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "File with environment variables to load before running")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}
