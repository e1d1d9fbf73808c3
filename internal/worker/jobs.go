// Package worker hosts the scheduled membership jobs: the daily expiry
// sweep, the daily auto-renew pass and the weekly expiring-soon
// notifier.
package worker

import (
	"context"
	"time"

	"github.com/olimpofit/gym-server/internal/config"
	"github.com/olimpofit/gym-server/internal/membership"
)

// NewExpirySweeper runs the expiry sweep daily. Memberships past their
// end date move to EXPIRED; reminders are a separate job.
func NewExpirySweeper(svc *membership.Service, cfg config.JobsConfig) *Runner {
	return NewRunner("ExpirySweeper", DailySchedule{Hour: cfg.ExpirySweepHour},
		func(ctx context.Context) (int, error) {
			return svc.CheckExpiredMemberships(ctx)
		})
}

// NewAutoRenewer renews opted-in memberships daily at the configured
// hour (midnight by default).
func NewAutoRenewer(svc *membership.Service, cfg config.JobsConfig) *Runner {
	return NewRunner("AutoRenewer", DailySchedule{Hour: cfg.AutoRenewHour},
		func(ctx context.Context) (int, error) {
			return svc.AutoRenewMemberships(ctx)
		})
}

// NewExpiringNotifier emails members whose membership ends within the
// configured window. Runs Monday mornings.
func NewExpiringNotifier(svc *membership.Service, cfg config.JobsConfig) *Runner {
	return NewRunner("ExpiringNotifier", WeeklySchedule{Weekday: time.Monday, Hour: cfg.ExpiringNotifyHour},
		func(ctx context.Context) (int, error) {
			now := time.Now().UTC()
			expiring, err := svc.FindExpiringMemberships(ctx, now, now.AddDate(0, 0, cfg.ExpiringWindowDays), true)
			if err != nil {
				return 0, err
			}
			return len(expiring), nil
		})
}
