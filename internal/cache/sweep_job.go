package cache

import (
	"context"

	"github.com/angelmondragon/refundlens/pkg/logger"
)

// SweepJobName identifies the sweep in logs and job metrics.
const SweepJobName = "cache-sweep"

// SweepJob runs ResultCache.Sweep on the cron schedule.
type SweepJob struct {
	cache *ResultCache
	logg  *logger.Logger
}

func NewSweepJob(cache *ResultCache, logg *logger.Logger) *SweepJob {
	return &SweepJob{cache: cache, logg: logg}
}

func (j *SweepJob) Name() string { return SweepJobName }

func (j *SweepJob) Run(ctx context.Context) error {
	removed, err := j.cache.Sweep(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		j.logg.Info(j.logg.WithField(ctx, "removed", removed), "cache entries evicted")
	}
	return nil
}
