package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flowtrigger/internal/format"
	"flowtrigger/internal/logger"
	"flowtrigger/internal/trigger"
)

var (
	verbose   bool
	logFormat string

	// Set once in PersistentPreRunE
	env trigger.Env
	log = zap.NewNop()
)

var rootFlags triggerFlags

var rootCmd = &cobra.Command{
	Use:   "flowtrigger",
	Short: "Trigger a workflow webhook with a JSON payload",
	Long: `flowtrigger sends one HTTP request to a workflow trigger URL
(for example a Power Automate "When an HTTP request is received" flow)
and prints the status code and response body.

The URL, bearer token and shared secret default to FLOW_URL, FLOW_BEARER
and FLOW_SECRET, which may also come from a .env file.

Examples:
  flowtrigger --url https://example.com/hook --data '{"name": "John"}'
  flowtrigger --payload payload.json --bearer $TOKEN --dry-run
  flowtrigger --method GET --data '{"page": 2}' -H 'Accept: application/json'
  flowtrigger chat "Explain quantum computing in simple terms"
  flowtrigger forward "Summarise today's tickets" --url my-flow`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}
		if !slices.Contains(logger.Formats, logFormat) {
			return fmt.Errorf("invalid --log-format %q (choose from %s)", logFormat, strings.Join(logger.Formats, ", "))
		}
		env = trigger.LoadEnv(os.Getenv)
		log = logger.CLI(verbose, logFormat, cmd.ErrOrStderr())
		return nil
	},
	RunE: runTrigger,
}

// Execute runs the root command. It is the only place an error turns into
// a non-zero exit status.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = log.Sync()

	if err != nil {
		format.PrintError(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show response headers and debug logs")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Diagnostic log format on stderr: "+strings.Join(logger.Formats, ", "))
	rootFlags.bind(rootCmd, true)
}
