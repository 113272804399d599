package jobs

import (
	"context"
	"log"
	"time"

	"mealsphere/dayclock"
	"mealsphere/rdx"
)

const nightlyLockTTL = time.Hour

// RunAll executes the maintenance pass for one business-day rollover, in the
// safe order: yesterday's attendance is reconciled while its reservations
// still exist, stale reservations are purged, counters are recomputed for
// the fresh day, synthetic bookings (if enabled) are generated, and old
// enrollments are expired. A failing job is logged and the rest still run; a
// broken purge must never block the counter reset.
func RunAll(ctx context.Context) {
	yesterday := dayclock.Today().AddDate(0, 0, -1)

	if err := ReconcileAttendance(ctx, yesterday); err != nil {
		log.Printf("[jobs] attendance reconciliation failed: %v", err)
	} else {
		log.Println("[jobs] attendance reconciliation complete")
	}

	if n, err := PurgeStaleReservations(ctx); err != nil {
		log.Printf("[jobs] reservation purge failed: %v", err)
	} else {
		log.Printf("[jobs] purged %d outdated reservations", n)
	}

	if err := ResetDailyCounters(ctx); err != nil {
		log.Printf("[jobs] counter reset failed: %v", err)
	} else {
		log.Println("[jobs] mess counters recomputed")
	}

	if n, err := SynthesizeDailyReservations(ctx); err != nil {
		log.Printf("[jobs] reservation synthesis failed: %v", err)
	} else if SynthMode() == "random" {
		log.Printf("[jobs] synthesized %d reservations", n)
	}

	if n, err := ExpireStaleEnrollments(ctx); err != nil {
		log.Printf("[jobs] enrollment expiry failed: %v", err)
	} else {
		log.Printf("[jobs] expired %d stale enrollments", n)
	}
}

// RunNightly sleeps until each business-day boundary and runs the
// maintenance pass exactly once per day across all instances, guarded by a
// day-keyed redis lock. Run it in its own goroutine; it exits when ctx is
// cancelled.
func RunNightly(ctx context.Context) {
	for {
		next := dayclock.NextBoundary(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		lockKey := "jobs:nightly:" + dayclock.Today().Format("2006-01-02")
		got, err := rdx.AcquireLock(ctx, lockKey, nightlyLockTTL)
		if err != nil {
			log.Printf("[jobs] nightly lock error: %v", err)
			continue
		}
		if !got {
			log.Println("[jobs] nightly run held by another instance, skipping")
			continue
		}

		log.Println("[jobs] nightly maintenance starting")
		RunAll(ctx)
		log.Println("[jobs] nightly maintenance finished")
		// Keep the lock until TTL expiry: releasing early would let a
		// lagging second instance rerun the same boundary.
	}
}
