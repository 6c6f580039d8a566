package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/NextMind-AI/rigbot"
	"github.com/NextMind-AI/rigbot/config"
)

var (
	askOffline bool
	askSession string
)

var rootCmd = &cobra.Command{
	Use:           "rigbot",
	Short:         "Rigbot - chat assistant for a chiropractic practice",
	Long:          "Rigbot answers appointment availability questions from Google Calendar and everything else with a language model.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Serve POST /api/chat, the chat history API and the embeddable widget.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Answer one message and print the reply",
	Long: `Run a single message through the same processor the server uses.

Examples:
  rigbot ask "¿Tienen hora mañana en la tarde?"

  # Use in-memory gateways, no credentials required
  rigbot ask --offline "¿Hay hora el viernes a las 11?"
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askOffline, "offline", false, "Use an empty calendar and a canned completion")
	askCmd.Flags().StringVar(&askSession, "session", "", "Session id to record the exchange under")

	rootCmd.AddCommand(serveCmd, askCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot, err := rigbot.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize rigbot: %w", err)
	}
	defer func() {
		if err := bot.Close(); err != nil {
			log.Error().Err(err).Msg("Shutdown cleanup failed")
		}
	}()

	if err := bot.Run(ctx); err != nil {
		return err
	}
	log.Info().Msg("Rigbot stopped")
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		bot *rigbot.Chatbot
		err error
	)

	if askOffline {
		cfg = config.Read()
		setupLogging(cfg)
		bot, err = rigbot.NewOffline(cfg, prometheus.NewRegistry())
	} else {
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		setupLogging(cfg)
		bot, err = rigbot.New(cmd.Context(), cfg)
	}
	if err != nil {
		return fmt.Errorf("initialize rigbot: %w", err)
	}
	defer bot.Close()

	reply, err := bot.Ask(cmd.Context(), askSession, strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
	return nil
}
