package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/coder4052/market-analysis/pkg/cache"
	"github.com/coder4052/market-analysis/pkg/logger"
	"github.com/coder4052/market-analysis/pkg/storage"
)

// CronManager manages scheduled maintenance jobs
type CronManager struct {
	cron      *cron.Cron
	store     *storage.Store
	cache     *cache.Client
	keepFiles int
	log       logger.Logger
}

// NewCronManager creates a new cron manager. cache may be nil when caching is
// disabled.
func NewCronManager(store *storage.Store, cacheClient *cache.Client, keepFiles int, log logger.Logger) *CronManager {
	if log == nil {
		log = logger.Default()
	}

	return &CronManager{
		cron:      cron.New(),
		store:     store,
		cache:     cacheClient,
		keepFiles: keepFiles,
		log:       log,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	// Daily at 2 AM: prune old report files from the repository
	_, err := cm.cron.AddFunc("0 2 * * *", func() {
		cm.log.Info("running daily report cleanup job")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		deleted, err := cm.store.Cleanup(ctx, cm.keepFiles)
		if err != nil {
			cm.log.Error("report cleanup failed", "error", err)
			return
		}
		cm.log.Info("report cleanup finished", "deleted", deleted, "kept", cm.keepFiles)
	})
	if err != nil {
		return err
	}

	// Daily at 3 AM: refresh the latest-report cache from storage
	_, err = cm.cron.AddFunc("0 3 * * *", func() {
		if cm.cache == nil {
			return
		}
		cm.log.Info("warming latest-report cache")

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		stored, err := cm.store.LoadLatest(ctx)
		if err != nil {
			cm.log.Error("cache warm failed", "error", err)
			return
		}
		if stored == nil {
			cm.log.Info("no stored reports to cache")
			return
		}
		if err := cm.cache.SetLatest(ctx, stored); err != nil {
			cm.log.Error("cache warm failed", "error", err)
			return
		}
		cm.log.Info("latest-report cache warmed", "filename", stored.Filename)
	})
	if err != nil {
		return err
	}

	cm.log.Info("cron jobs configured",
		"daily_cleanup", "0 2 * * *",
		"daily_cache_warm", "0 3 * * *")

	return nil
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.log.Info("starting cron scheduler")
	cm.cron.Start()
}

// Stop stops the cron scheduler
func (cm *CronManager) Stop() {
	cm.log.Info("stopping cron scheduler")
	cm.cron.Stop()
}
