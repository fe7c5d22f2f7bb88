// Package cmd provides the command-line interface for the querychat CLI.
// It implements subcommands for conversational querying, schema
// synchronization, benchmark evaluation, and connection configuration using
// the Cobra CLI framework. The package handles command parsing, execution,
// and provides a rich terminal UI with spinners and progress indicators.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"querychat/cli/internal/backend"
	"querychat/cli/internal/config"
	"querychat/cli/internal/httperrors"
	"querychat/cli/internal/keychain"
	"querychat/cli/internal/session"
)

// defaultServer is where the reference backend listens locally.
const defaultServer = "http://localhost:8000"

var (
	showVersion bool
	serverURL   string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "querychat",
	Short:         "querychat CLI for conversational SQL over a remote backend",
	Long:          `querychat is a command-line tool for querying databases in natural language. Questions are sent to a backend service that translates them to SQL, executes them, and returns results, summaries and benchmark metrics.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("querychat %s\n", Version)

			health, err := newClient().Health(cmd.Context())
			if err != nil {
				_ = httperrors.FormatNetworkError(err, "checking the backend at "+httperrors.ExtractHostFromURL(baseURL()))
				health = "unreachable"
			}
			fmt.Printf("backend %s (%s)\n", baseURL(), health)
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI and backend version information")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Backend base URL (defaults to QUERYCHAT_SERVER or "+defaultServer+")")
}

// baseURL resolves the backend base URL: flag, then environment, then default.
func baseURL() string {
	if serverURL != "" {
		return serverURL
	}
	if env := os.Getenv("QUERYCHAT_SERVER"); env != "" {
		return env
	}
	return defaultServer
}

// newClient builds the backend client for the resolved server.
func newClient() *backend.Client {
	return backend.New(baseURL(), backend.DefaultEndpoints())
}

// newSession builds a session seeded with the persisted profile. The password
// never comes from the config file; when the OS keychain holds one it is
// restored into process memory here.
func newSession(opts ...session.Option) *session.Session {
	prof := config.Load()
	if km, err := keychain.GetManager(); err == nil {
		if pw, err := km.LoadDBPassword(); err == nil && pw != "" {
			prof.Password = pw
		}
	}
	opts = append([]session.Option{session.WithProfile(prof)}, opts...)
	return session.New(newClient(), opts...)
}
