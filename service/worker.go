package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// StartDispatchWorker starts a background worker that drains the payout
// queue on a fixed interval. Overlap with other triggers (the HTTP
// endpoint, another replica) is safe because ownership of each event is
// established by the atomic claim, not by this process.
// Returns a cleanup function to stop the worker gracefully.
func StartDispatchWorker(ctx context.Context, dispatcher *DispatcherService, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	stopChan := make(chan struct{})

	runOnce := func() {
		run, err := dispatcher.RunBatch(context.Background())
		if err != nil {
			log.Errorf("Error processing payout batch: %v", err)
			return
		}
		if run.EventsClaimed == 0 {
			log.Debug("No pending payout events")
			return
		}
		log.WithFields(log.Fields{
			"claimed":      run.EventsClaimed,
			"completed":    run.EventsCompleted,
			"skipped":      run.EventsSkipped,
			"requeued":     run.EventsRequeued,
			"deadLettered": run.EventsDeadLettered,
		}).Info("Processed payout batch")
	}

	go func() {
		log.Info("Payout dispatch worker started")

		// Run immediately on startup
		runOnce()

		for {
			select {
			case <-ctx.Done():
				log.Info("Payout dispatch worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Payout dispatch worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				runOnce()
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(stopChan)
	}
}
