package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-dashboard/internal/logger"
)

const (
	refreshTag     = "auto-refresh"
	refreshTimeout = 30 * time.Second
)

// RefreshFunc re-runs the lookup for city.
type RefreshFunc func(ctx context.Context, city string)

// AutoRefresher periodically refreshes the weather for the city currently on
// screen. At most one refresh job exists at a time.
type AutoRefresher struct {
	mu        sync.Mutex
	scheduler *gocron.Scheduler
	interval  time.Duration
	refresh   RefreshFunc
	city      string
}

// New creates a new AutoRefresher. The underlying scheduler starts right
// away but holds no job until Watch is called.
func New(interval time.Duration, refresh RefreshFunc) *AutoRefresher {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	s.StartAsync()

	return &AutoRefresher{
		scheduler: s,
		interval:  interval,
		refresh:   refresh,
	}
}

// Watch replaces any existing job with one refreshing city every interval.
// The first run happens one interval from now.
func (a *AutoRefresher) Watch(city string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.city == city && len(a.scheduler.Jobs()) > 0 {
		return nil
	}
	a.removeLocked()

	_, err := a.scheduler.Every(a.interval).WaitForSchedule().Tag(refreshTag).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		logger.Get().Infow("auto-refresh: refreshing weather", "city", city)
		a.refresh(ctx, city)
	})
	if err != nil {
		return err
	}

	a.city = city
	logger.Get().Debugw("auto-refresh: scheduled", "city", city, "interval", a.interval)
	return nil
}

// Unwatch cancels the refresh job, if any.
func (a *AutoRefresher) Unwatch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.removeLocked()
}

// watching returns the city being refreshed, or "" when idle.
func (a *AutoRefresher) watching() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.city
}

// Stop cancels the job and stops the scheduler.
func (a *AutoRefresher) Stop() {
	a.Unwatch()
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
}

func (a *AutoRefresher) removeLocked() {
	if a.city == "" {
		return
	}
	if err := a.scheduler.RemoveByTag(refreshTag); err != nil {
		logger.Get().Debugw("auto-refresh: no job to remove", "error", err)
	}
	a.city = ""
}
