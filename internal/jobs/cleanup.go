package jobs

import (
	"log"
	"time"

	"github.com/l2h-tech/blog-backend/internal/storage"
)

// CleanupJob periodically deletes expired verification codes. Every lookup
// already filters on the expiry timestamp, so this only keeps the table from
// growing without bound.
type CleanupJob struct {
	store    storage.Store
	interval time.Duration
	stop     chan struct{}
}

// NewCleanupJob creates the expired-code reaper
func NewCleanupJob(store storage.Store) *CleanupJob {
	return &CleanupJob{
		store:    store,
		interval: 10 * time.Minute,
		stop:     make(chan struct{}),
	}
}

// Start launches the reaper loop in the background
func (j *CleanupJob) Start() {
	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		log.Printf("✅ OTP cleanup job started (every %s)", j.interval)
		for {
			select {
			case <-ticker.C:
				j.run()
			case <-j.stop:
				return
			}
		}
	}()
}

// Stop terminates the reaper loop
func (j *CleanupJob) Stop() {
	close(j.stop)
}

func (j *CleanupJob) run() {
	removed, err := j.store.DeleteExpiredOTPs()
	if err != nil {
		log.Printf("❌ OTP cleanup failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("🧹 Removed %d expired verification codes", removed)
	}
}
