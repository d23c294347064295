package worker

import (
	"fmt"
	"net/http"

	"github.com/jmehdipour/wifi-billing/internal/config"
	"github.com/jmehdipour/wifi-billing/internal/logger"
	"github.com/jmehdipour/wifi-billing/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var metricsAddr string

// NewWorkerCmd returns the parent "worker" command.
func NewWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run background workers",
	}
	cmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics on this address (disabled when empty)")

	// attach subcommands
	cmd.AddCommand(projectorCmd)
	cmd.AddCommand(reminderCmd)

	return cmd
}

// setup loads config, initializes logging and registers metrics.
func setup(cmd *cobra.Command) (config.Config, error) {
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level); err != nil {
		return config.Config{}, fmt.Errorf("init logger: %w", err)
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)
	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Log.Error("metrics listener stopped", zap.Error(err))
			}
		}()
	}
	return cfg, nil
}
