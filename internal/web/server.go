// Package web serves the dashboard page and the JSON API over the Price
// Store and Run Coordinator. Wire formats here are a thin mapping of the
// store's models; the tracking core knows nothing about HTTP.
package web

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/eddychk/viagoscrap/internal/sched"
	"github.com/eddychk/viagoscrap/internal/store"
	"github.com/eddychk/viagoscrap/internal/track"
)

// Server bundles the dashboard's dependencies.
type Server struct {
	Store   *store.Store
	Tracker *track.Tracker
	Sched   *sched.Scheduler
	Logger  *slog.Logger

	DBPath               string
	Headless             bool
	ScraperDebug         bool
	NotificationsEnabled bool
}

// App builds the fiber application with all routes registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "viagoscrap",
		DisableStartupMessage: true,
	})

	app.Get("/", s.home)
	app.Get("/healthz", s.healthz)

	api := app.Group("/api")
	api.Get("/config", s.getConfig)
	api.Post("/config/interval", s.updateInterval)
	api.Get("/events", s.listEvents)
	api.Post("/events", s.createEvent)
	api.Post("/events/:id/scrape", s.scrapeOne)
	api.Post("/scrape-all", s.scrapeAll)
	api.Get("/events/:id/history", s.history)
	api.Get("/events/:id/chart", s.chart)
	api.Get("/subscribers", s.listSubscribers)
	api.Post("/subscribers", s.createSubscriber)
	api.Delete("/subscribers/:id", s.deleteSubscriber)
	api.Get("/runs", s.listRuns)

	return app
}

func (s *Server) home(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.SendString(dashboardHTML)
}

func (s *Server) healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
