// Package commands implements the vramctl CLI commands.
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ksingh-scogo/vramio/pkg/hub"
)

var (
	// Global flags
	verbose bool
	logJSON bool
	token   string
	baseURL string
	timeout time.Duration

	// Shared state
	log *logrus.Entry
)

// rootCmd is the root command for vramctl.
var rootCmd = &cobra.Command{
	Use:   "vramctl",
	Short: "Estimate model memory requirements from safetensors headers",
	Long: `vramctl estimates how much memory a HuggingFace-hosted model needs by
reading only the headers of its safetensors files over range requests.

Example:
  vramctl estimate microsoft/phi-2
  vramctl serve --port 8080`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help and version commands
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		// Setup logging
		logger := logrus.New()
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.InfoLevel)
		}
		if logJSON {
			logger.SetFormatter(&logrus.JSONFormatter{})
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			if lvl, err := logrus.ParseLevel(level); err == nil {
				logger.SetLevel(lvl)
			}
		}

		log = logger.WithField("component", "vramctl")

		// A .env file is optional; flags and environment win.
		_ = godotenv.Load()

		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	// Setup context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for the upstream registry (defaults to HF_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Upstream registry base URL (defaults to huggingface.co)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Per-request timeout for upstream calls")

	rootCmd.AddCommand(
		newServeCmd(),
		newEstimateCmd(),
		newVersionCmd(),
	)
}

// newHubClient builds the upstream registry client from flags and env.
func newHubClient() *hub.Client {
	hubToken := token
	if hubToken == "" {
		hubToken = os.Getenv("HF_TOKEN")
	}
	return hub.NewClient(
		hub.WithToken(hubToken),
		hub.WithBaseURL(baseURL),
		hub.WithTimeout(timeout),
	)
}
