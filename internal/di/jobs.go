package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/investai/internal/config"
	"github.com/aristath/investai/internal/reliability"
	"github.com/aristath/investai/internal/scheduler"
)

// dailyMaintenanceSchedule runs at 02:00 every day (seconds field first)
const dailyMaintenanceSchedule = "0 0 2 * * *"

// RegisterJobs creates the background jobs and registers them with a new
// scheduler. The scheduler is not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	sched := scheduler.New(log)
	instances := &JobInstances{}

	instances.RefreshPrices = scheduler.NewRefreshPricesJob(container.AssetRepo, container.PriceService, log)
	if err := sched.AddJob(cfg.PriceRefreshSchedule, instances.RefreshPrices); err != nil {
		return nil, fmt.Errorf("failed to register refresh_prices job: %w", err)
	}

	instances.DailyMaintenance = reliability.NewDailyMaintenanceJob(container.DB, cfg.DataDir, log)
	if err := sched.AddJob(dailyMaintenanceSchedule, instances.DailyMaintenance); err != nil {
		return nil, fmt.Errorf("failed to register daily_maintenance job: %w", err)
	}

	container.Scheduler = sched
	container.Jobs = instances
	return instances, nil
}
