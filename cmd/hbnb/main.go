// Package main provides the hbnb CLI entry point.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/hbnb/internal/config"
	"github.com/matsen/hbnb/internal/console"
	"github.com/matsen/hbnb/internal/store"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	dataFileFlag  string
	typesFileFlag string
	verboseFlag   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "hbnb",
	Short: "Interactive shell for the hbnb object registry",
	Long: `hbnb is a line-oriented shell that creates, shows, updates and destroys
typed records (User, Place, State, City, Amenity, Review, BaseModel).

Commands can be written positionally or in dotted form:
  show Place 1234
  Place.show("1234")

Records are persisted as JSON after every change.`,
	Args:          cobra.NoArgs,
	RunE:          runShell,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env file if present (for HBNB_* settings)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVarP(&dataFileFlag, "file", "f", "", "Path of the JSON data file (default \"file.json\")")
	rootCmd.PersistentFlags().StringVar(&typesFileFlag, "types", "", "Path of a YAML file declaring the type registry")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
	rootCmd.Version = Version
}

// loadConfig resolves configuration and applies command-line flags on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, withExitCode(ExitConfigError, fmt.Errorf("loading config: %w", err))
	}
	if dataFileFlag != "" {
		cfg.DataFile = dataFileFlag
	}
	if typesFileFlag != "" {
		cfg.TypesFile = typesFileFlag
	}
	if verboseFlag {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newLogger builds the text logger used by every command and installs it
// as the slog default.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// openStore loads the type registry and the data file named by cfg.
func openStore(cfg *config.Config, logger *slog.Logger) (*store.Store, error) {
	types, err := store.LoadTypes(cfg.TypesFile)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	st, err := store.Open(cfg.DataFile, types, logger)
	if err != nil {
		return nil, withExitCode(ExitDataError, err)
	}
	return st, nil
}

func runShell(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg)

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	opts := []console.Option{console.WithLogger(logger)}
	if cfg.Prompt != "" {
		opts = append(opts, console.WithPrompt(cfg.Prompt))
	}

	c := console.New(st, cmd.OutOrStdout(), opts...)
	if err := c.Run(cmd.InOrStdin()); err != nil {
		if store.IsCoercionError(err) {
			return withExitCode(ExitDataError, err)
		}
		return err
	}
	return nil
}
