package httpapi

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, session *dashboard.Session) {
	v1 := app.Group("/api/v1")

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		return c.JSON(session.State())
	})

	v1.Post("/search", func(c *fiber.Ctx) error {
		var req searchRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if _, err := session.Search(c.UserContext(), req.City, false); err != nil {
			return toHTTPError(err)
		}
		return c.JSON(session.State())
	})

	v1.Post("/search/input", func(c *fiber.Ctx) error {
		var req inputRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		session.Input(req.Text)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"accepted": true})
	})

	v1.Post("/search/location", func(c *fiber.Ctx) error {
		var req locationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		loc, err := req.locator()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if _, err := session.SearchByLocation(c.UserContext(), loc); err != nil {
			return toHTTPError(err)
		}
		return c.JSON(session.State())
	})

	v1.Get("/compare", func(c *fiber.Ctx) error {
		cmp, err := session.Compare(c.UserContext(), c.Query("city1"), c.Query("city2"))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(cmp)
	})

	registerFavoriteRoutes(v1, session)
	registerPreferenceRoutes(v1, session)

	v1.Delete("/data", func(c *fiber.Ctx) error {
		session.ClearAllData(c.UserContext())
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func registerFavoriteRoutes(r fiber.Router, session *dashboard.Session) {
	r.Get("/favorites", func(c *fiber.Ctx) error {
		return c.JSON(session.Favorites())
	})

	r.Post("/favorites/toggle", func(c *fiber.Ctx) error {
		on, err := session.ToggleFavorite(c.UserContext())
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fiber.Map{
			"favorite":  on,
			"favorites": session.Favorites(),
		})
	})

	r.Delete("/favorites/:city", func(c *fiber.Ctx) error {
		city, err := url.PathUnescape(c.Params("city"))
		if err != nil || strings.TrimSpace(city) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "invalid city")
		}
		if !session.RemoveFavorite(c.UserContext(), city) {
			return fiber.NewError(fiber.StatusNotFound, "city is not a favorite")
		}
		return c.JSON(fiber.Map{
			"favorite":  session.IsFavorite(),
			"favorites": session.Favorites(),
		})
	})

	r.Get("/recent", func(c *fiber.Ctx) error {
		return c.JSON(session.RecentSearches())
	})
}

func registerPreferenceRoutes(r fiber.Router, session *dashboard.Session) {
	prefs := r.Group("/preferences")

	prefs.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(session.Settings())
	})

	prefs.Put("/unit", func(c *fiber.Ctx) error {
		var req unitRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		if err := session.SetUnit(c.UserContext(), weather.Unit(req.Unit)); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(session.Settings())
	})

	prefs.Put("/language", func(c *fiber.Ctx) error {
		var req languageRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		if err := session.SetLanguage(c.UserContext(), req.Language); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(session.Settings())
	})

	prefs.Post("/auto-refresh/toggle", func(c *fiber.Ctx) error {
		session.ToggleAutoRefresh(c.UserContext())
		return c.JSON(session.Settings())
	})

	prefs.Post("/notifications/toggle", func(c *fiber.Ctx) error {
		if _, err := session.ToggleNotifications(c.UserContext()); err != nil {
			return toHTTPError(err)
		}
		return c.JSON(session.Settings())
	})

	prefs.Post("/theme/toggle", func(c *fiber.Ctx) error {
		session.ToggleTheme(c.UserContext())
		return c.JSON(session.Settings())
	})
}

type searchRequest struct {
	City string `json:"city"`
}

type inputRequest struct {
	Text string `json:"text"`
}

type locationRequest struct {
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Denied bool     `json:"denied"`
}

// locator turns the position reported by the client into a Locator.
func (r locationRequest) locator() (dashboard.Locator, error) {
	if r.Denied {
		return dashboard.StaticLocator{Denied: true}, nil
	}
	if r.Lat == nil || r.Lon == nil {
		return nil, errors.New("lat and lon are required")
	}
	return dashboard.StaticLocator{Coords: &weather.Coordinates{Lat: *r.Lat, Lon: *r.Lon}}, nil
}

type unitRequest struct {
	Unit string `json:"unit" validate:"required,oneof=metric imperial"`
}

type languageRequest struct {
	Language string `json:"language" validate:"required,min=2,max=5"`
}

func bindAndValidate(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// toHTTPError maps domain errors onto HTTP statuses.
func toHTTPError(err error) error {
	switch {
	case weather.IsValidationError(err):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrPermissionDenied):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, dashboard.ErrNoReport):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
}

// ErrorHandler renders errors as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
