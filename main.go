// vramio estimates the memory footprint of HuggingFace-hosted models by
// reading safetensors headers over range requests, never downloading weight
// data.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"github.com/ksingh-scogo/vramio/pkg/estimator"
	"github.com/ksingh-scogo/vramio/pkg/hub"
	"github.com/ksingh-scogo/vramio/pkg/logging"
	"github.com/ksingh-scogo/vramio/pkg/metrics"
)

var log = logrus.New()

// serverConfig is the process configuration, read once from the environment
// at startup.
type serverConfig struct {
	Port            int           `envconfig:"PORT" default:"8080"`
	HFToken         string        `envconfig:"HF_TOKEN"`
	HFBaseURL       string        `envconfig:"HF_BASE_URL"`
	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"30s"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON         bool          `envconfig:"LOG_JSON"`
	DisableMetrics  bool          `envconfig:"DISABLE_METRICS"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// A .env file is optional; the environment wins.
	_ = godotenv.Load()

	var cfg serverConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("Unknown log level %q, using info", cfg.LogLevel)
	}
	if cfg.LogJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	// Create a proxy-aware HTTP transport.
	var baseTransport *http.Transport
	if t, ok := http.DefaultTransport.(*http.Transport); ok {
		baseTransport = t.Clone()
	} else {
		baseTransport = &http.Transport{}
	}
	baseTransport.Proxy = http.ProxyFromEnvironment

	hubClient := hub.NewClient(
		hub.WithToken(cfg.HFToken),
		hub.WithBaseURL(cfg.HFBaseURL),
		hub.WithTransport(baseTransport),
		hub.WithTimeout(cfg.UpstreamTimeout),
	)
	if cfg.HFToken != "" {
		log.Info("Forwarding a bearer token to the upstream registry")
	}

	est := estimator.New(
		hubClient,
		logging.NewLogrusAdapterFromEntry(log.WithField("component", "estimator")),
	)
	estimateHandler := estimator.NewHTTPHandler(
		logging.NewLogrusAdapterFromEntry(log.WithField("component", "http")),
		est,
		cfg.AllowedOrigins,
	)

	router := http.NewServeMux()
	router.Handle("/", estimateHandler)
	if !cfg.DisableMetrics {
		router.Handle("/metrics", metrics.Handler())
		log.Info("Metrics endpoint enabled at /metrics")
	} else {
		log.Info("Metrics endpoint disabled")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrors := make(chan error, 1)

	log.Infof("Listening on TCP port %d", cfg.Port)
	go func() {
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Errorf("Server error: %v", err)
		}
	case <-ctx.Done():
		log.Infoln("Shutdown signal received")
		log.Infoln("Shutting down the server")
		if err := server.Close(); err != nil {
			log.Errorf("Server shutdown error: %v", err)
		}
	}
	log.Infoln("vramio stopped")
}
