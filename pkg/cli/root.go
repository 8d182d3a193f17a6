package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/uuazed/numerapi-go/pkg/numerapi"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// settings holds the resolved global flags. Commands build their API
// client from it after PersistentPreRunE ran.
type settings struct {
	publicID   string
	secretKey  string
	endpoint   string
	profile    string
	noProgress bool
	verbosity  string
}

func (s *settings) options() []numerapi.Option {
	opts := []numerapi.Option{
		WithLoggerFromVerbosity(s.verbosity),
		numerapi.WithProgressBars(!s.noProgress),
	}
	if s.endpoint != "" {
		opts = append(opts, numerapi.WithBaseURL(s.endpoint))
	}
	// with no explicit pair the client falls back to the environment
	if s.publicID != "" && s.secretKey != "" {
		opts = append(opts, numerapi.WithCredentials(s.publicID, s.secretKey))
	}
	return opts
}

func (s *settings) numerAPI() *numerapi.NumerAPI {
	return numerapi.NewNumerAPI(s.options()...)
}

func (s *settings) signalsAPI() *numerapi.SignalsAPI {
	return numerapi.NewSignalsAPI(s.options()...)
}

func (s *settings) quantAPI() *numerapi.QuantAPI {
	return numerapi.NewQuantAPI(s.options()...)
}

// WithLoggerFromVerbosity maps a verbosity name to a text slog logger on
// stderr.
func WithLoggerFromVerbosity(verbosity string) numerapi.Option {
	level := slog.LevelWarn
	switch verbosity {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return numerapi.WithLogger(logger)
}

func newRootCmd() *cobra.Command {
	s := &settings{}

	rootCmd := &cobra.Command{
		Use:           "numerapi",
		Short:         "Wrapper around the Numerai API",
		Long:          "Command-line interface for the Numerai tournament API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				// config file is optional
				cfg = &UserConfig{
					CurrentProfile: "default",
					Profiles:       map[string]Profile{},
				}
			}
			p := cfg.ActiveProfile(s.profile)

			// precedence: flag > env > profile
			if !cmd.Flags().Changed("public-id") {
				if v := os.Getenv(numerapi.EnvPublicID); v != "" {
					s.publicID = v
				} else if p.PublicID != "" {
					s.publicID = p.PublicID
				}
			}
			if !cmd.Flags().Changed("secret-key") {
				if v := os.Getenv(numerapi.EnvSecretKey); v != "" {
					s.secretKey = v
				} else if p.SecretKey != "" {
					s.secretKey = p.SecretKey
				}
			}
			if !cmd.Flags().Changed("endpoint") && p.Endpoint != "" {
				s.endpoint = p.Endpoint
			}

			switch s.verbosity {
			case "debug", "info", "warn", "error":
			default:
				return fmt.Errorf("unsupported verbosity %q: use debug, info, warn or error", s.verbosity)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&s.publicID, "public-id", "", "Numerai API public id")
	rootCmd.PersistentFlags().StringVar(&s.secretKey, "secret-key", "", "Numerai API secret key")
	rootCmd.PersistentFlags().StringVar(&s.endpoint, "endpoint", "", "Override the GraphQL endpoint")
	rootCmd.PersistentFlags().StringVarP(&s.profile, "profile", "p", "", "Config profile to use")
	rootCmd.PersistentFlags().BoolVar(&s.noProgress, "no-progress", false, "Disable download progress bars")
	rootCmd.PersistentFlags().StringVar(&s.verbosity, "verbosity", "warn", "Log level (debug, info, warn, error)")

	addTournamentCommands(rootCmd, s)
	rootCmd.AddCommand(newSignalsCmd(s))
	rootCmd.AddCommand(newQuantCmd(s))
	rootCmd.AddCommand(newComputeCmd(s))
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
