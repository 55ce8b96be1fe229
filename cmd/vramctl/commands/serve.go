package commands

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ksingh-scogo/vramio/pkg/estimator"
	"github.com/ksingh-scogo/vramio/pkg/logging"
	"github.com/ksingh-scogo/vramio/pkg/metrics"
)

func newServeCmd() *cobra.Command {
	var (
		port           int
		disableMetrics bool
		allowedOrigins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the estimation HTTP server",
		Long: `Run the estimation HTTP server.

Examples:
  vramctl serve
  vramctl serve --port 9090 --token hf_xxx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, port, disableMetrics, allowedOrigins)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on")
	cmd.Flags().BoolVar(&disableMetrics, "disable-metrics", false, "Disable the /metrics endpoint")
	cmd.Flags().StringSliceVar(&allowedOrigins, "allowed-origins", nil, "CORS origins to allow (default: any)")

	return cmd
}

func runServe(cmd *cobra.Command, port int, disableMetrics bool, allowedOrigins []string) error {
	ctx := cmd.Context()

	est := estimator.New(
		newHubClient(),
		logging.NewLogrusAdapterFromEntry(log.WithField("component", "estimator")),
	)
	estimateHandler := estimator.NewHTTPHandler(
		logging.NewLogrusAdapterFromEntry(log.WithField("component", "http")),
		est,
		allowedOrigins,
	)

	router := http.NewServeMux()
	router.Handle("/", estimateHandler)
	if !disableMetrics {
		router.Handle("/metrics", metrics.Handler())
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrors := make(chan error, 1)

	log.Infof("Listening on TCP port %d", port)
	go func() {
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		log.Infoln("Shutdown signal received")
		if err := server.Close(); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
	}
	return nil
}
