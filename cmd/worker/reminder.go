package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jmehdipour/wifi-billing/internal/billing"
	"github.com/jmehdipour/wifi-billing/internal/config"
	"github.com/jmehdipour/wifi-billing/internal/db"
	"github.com/jmehdipour/wifi-billing/internal/dispatcher"
	"github.com/jmehdipour/wifi-billing/internal/logger"
	"github.com/jmehdipour/wifi-billing/internal/repository"
	"github.com/jmehdipour/wifi-billing/internal/worker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runOnce bool

var reminderCmd = &cobra.Command{
	Use:   "reminder",
	Short: "Send due-soon and overdue reminders on the configured schedule",
	RunE:  runReminder,
}

func init() {
	reminderCmd.Flags().BoolVar(&runOnce, "once", false, "scan once and exit")
}

// buildProviders turns enabled provider configs into dispatcher providers.
func buildProviders(pcs []config.ProviderConfig) []dispatcher.Provider {
	var provs []dispatcher.Provider
	for _, pc := range pcs {
		if !pc.Enabled || strings.TrimSpace(pc.BaseURL) == "" {
			continue
		}
		provs = append(provs,
			dispatcher.NewHTTPProvider(
				pc.Name,
				pc.BaseURL,
				pc.Path,
				pc.TimeoutMs,
				pc.Breaker.FailThreshold,
				pc.Breaker.OpenForMs,
			),
		)
	}
	return provs
}

func runReminder(cmd *cobra.Command, args []string) error {
	// 1) load config
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	loc, err := cfg.Billing.Location()
	if err != nil {
		return err
	}

	// 2) providers -> dispatcher
	provs := buildProviders(cfg.Providers)
	if len(provs) == 0 {
		return fmt.Errorf("no providers enabled in config")
	}
	disp := dispatcher.NewDispatcher(provs, dispatcher.Attempts{
		DueSoon: cfg.Reminder.MaxRetryAttempts.DueSoon,
		Overdue: cfg.Reminder.MaxRetryAttempts.Overdue,
	})

	// 3) DB connection (MySQL)
	dbx, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.PoolOptsFrom(cfg.MySQL))
	if err != nil {
		return fmt.Errorf("mysql connect: %w", err)
	}
	defer dbx.Close()

	w := worker.NewReminders(
		repository.NewCustomersRepository(dbx),
		disp,
		billing.SystemClock{Location: loc},
		cfg.Reminder.Schedule,
		loc,
	)

	// 4) graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runOnce {
		_, _, err := w.RunOnce(ctx)
		return err
	}

	logger.Log.Info("reminder worker started",
		zap.String("schedule", w.Schedule),
		zap.Int("providers", len(provs)),
	)
	return w.Run(ctx)
}
