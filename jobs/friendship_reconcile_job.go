package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"zyncchat-api/metrics"
	"zyncchat-api/models"
	"zyncchat-api/repositories"
)

const (
	reconcileBatchSize = 500
	reconcileTimeout   = 5 * time.Minute
)

// FriendshipReconcileJob periodically restores the mirror row of any
// one-sided friendship.
type FriendshipReconcileJob struct {
	friends  *repositories.FriendRepository
	schedule string
	logger   *zap.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
	initial sync.WaitGroup
}

func NewFriendshipReconcileJob(friends *repositories.FriendRepository, schedule string, logger *zap.Logger) *FriendshipReconcileJob {
	return &FriendshipReconcileJob{
		friends:  friends,
		schedule: schedule,
		logger:   logger,
	}
}

// Start runs one pass immediately and then on the schedule.
func (j *FriendshipReconcileJob) Start() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(j.schedule, j.run); err != nil {
		return fmt.Errorf("reconcile job: invalid schedule %q: %w", j.schedule, err)
	}

	j.initial.Add(1)
	go func() {
		defer j.initial.Done()
		j.run()
	}()
	c.Start()

	j.cron = c
	j.running = true
	j.logger.Info("friendship reconcile job started", zap.String("schedule", j.schedule))
	return nil
}

// Stop waits for an in-flight pass to finish.
func (j *FriendshipReconcileJob) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.running {
		return
	}
	<-j.cron.Stop().Done()
	j.initial.Wait()
	j.running = false
	j.logger.Info("friendship reconcile job stopped")
}

func (j *FriendshipReconcileJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	if _, err := j.RunOnce(ctx); err != nil {
		j.logger.Error("friendship reconcile failed", zap.Error(err))
	}
}

// RunOnce inserts missing mirror rows in batches and returns how many were repaired.
func (j *FriendshipReconcileJob) RunOnce(ctx context.Context) (int, error) {
	repaired := 0
	for {
		oneSided, err := j.friends.OneSided(ctx, reconcileBatchSize)
		if err != nil {
			return repaired, fmt.Errorf("find one-sided friendships: %w", err)
		}
		if len(oneSided) == 0 {
			break
		}

		mirrors := make([]models.Friendship, 0, len(oneSided))
		for _, f := range oneSided {
			mirrors = append(mirrors, models.Friendship{UserID: f.FriendID, FriendID: f.UserID})
		}
		if err := j.friends.AddFriendships(ctx, mirrors); err != nil {
			return repaired, fmt.Errorf("insert mirror friendships: %w", err)
		}
		repaired += len(mirrors)
		metrics.RecordFriendshipRepairs(len(mirrors))

		if len(oneSided) < reconcileBatchSize {
			break
		}
	}

	if repaired > 0 {
		j.logger.Warn("repaired one-sided friendships", zap.Int("count", repaired))
	}
	return repaired, nil
}
