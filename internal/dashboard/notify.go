package dashboard

import (
	"context"

	"github.com/i474232898/weather-dashboard/internal/logger"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Notifier delivers user-facing notifications.
type Notifier interface {
	// RequestPermission asks the platform to allow notifications. It returns
	// weather.ErrPermissionDenied when the user refuses.
	RequestPermission(ctx context.Context) error
	Notify(title, body string)
}

// LogNotifier writes notifications to the application log.
type LogNotifier struct{}

func (LogNotifier) RequestPermission(context.Context) error { return nil }

func (LogNotifier) Notify(title, body string) {
	logger.Get().Infow("notification", "title", title, "body", body)
}

// Locator reports the device position.
type Locator interface {
	// Locate returns weather.ErrPermissionDenied when the user refused access.
	Locate(ctx context.Context) (weather.Coordinates, error)
}

// StaticLocator returns a fixed position, or a denial.
type StaticLocator struct {
	Coords *weather.Coordinates
	Denied bool
}

func (l StaticLocator) Locate(context.Context) (weather.Coordinates, error) {
	if l.Denied {
		return weather.Coordinates{}, weather.ErrPermissionDenied
	}
	if l.Coords == nil {
		return weather.Coordinates{}, weather.ErrInvalidCoordinates
	}
	return *l.Coords, nil
}
