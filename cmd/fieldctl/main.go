package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fieldpro-backend/client"
	"fieldpro-backend/collection"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose     bool
	apiURL      string
	sessionPath string
	assumeYes   bool

	logger   *zap.Logger
	api      *client.Client
	sessions *client.SessionStore
	session  *client.Session
)

var rootCmd = &cobra.Command{
	Use:   "fieldctl",
	Short: "FieldPro command line client",
	Long: `fieldctl manages jobs, clients, invoices, inventory and time tracking
against a FieldPro backend.

Sign in once with "fieldctl login"; the token is kept in a session file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		v := viper.New()
		v.SetEnvPrefix("FIELDPRO")
		v.AutomaticEnv()
		v.SetDefault("api_url", "http://localhost:8080")
		v.SetDefault("session", client.DefaultSessionPath())
		if apiURL == "" {
			apiURL = v.GetString("api_url")
		}
		if sessionPath == "" {
			sessionPath = v.GetString("session")
		}

		sessions = client.NewSessionStore(sessionPath)
		session, err = sessions.Load()
		if err != nil {
			return err
		}
		if session.APIURL != "" && !cmd.Flags().Changed("api-url") {
			apiURL = session.APIURL
		}
		api = client.New(apiURL, client.WithToken(session.Token))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	// Group commands add a login check on top of the root setup.
	cobra.EnableTraverseRunHooks = true

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (FIELDPRO_API_URL)")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", "", "Session file (FIELDPRO_SESSION)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask before deleting")
}

// requireLogin fails commands that need a token when none is stored.
func requireLogin(cmd *cobra.Command, args []string) error {
	if !session.LoggedIn() {
		return errors.New("not logged in, run: fieldctl login")
	}
	return nil
}

func notifier() collection.Notifier {
	return client.LogNotifier{Logger: logger}
}

func confirmer(cmd *cobra.Command) collection.Confirmer {
	if assumeYes {
		return collection.AlwaysConfirm{}
	}
	return client.PromptConfirmer{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
