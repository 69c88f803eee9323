package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/eddychk/viagoscrap/internal/models"
)

type eventCreate struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Active *bool  `json:"active"`
}

type intervalUpdate struct {
	ScrapeIntervalMin int `json:"scrape_interval_min"`
}

type subscriberCreate struct {
	Email   string `json:"email"`
	EventID *int64 `json:"event_id"`
}

func (s *Server) getConfig(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"db_path":               s.DBPath,
		"scrape_interval_min":   s.Sched.Interval(),
		"headless":              s.Headless,
		"scraper_debug":         s.ScraperDebug,
		"notifications_enabled": s.NotificationsEnabled,
	})
}

func (s *Server) updateInterval(c *fiber.Ctx) error {
	var payload intervalUpdate
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if payload.ScrapeIntervalMin < 1 || payload.ScrapeIntervalMin > 1440 {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "interval must be between 1 and 1440 minutes")
	}
	s.Sched.SetInterval(payload.ScrapeIntervalMin)
	return c.JSON(fiber.Map{"ok": true, "scrape_interval_min": s.Sched.Interval()})
}

func (s *Server) listEvents(c *fiber.Ctx) error {
	events, err := s.Store.ListEvents()
	if err != nil {
		return err
	}
	if events == nil {
		events = []models.TrackedEvent{}
	}
	return c.JSON(events)
}

func (s *Server) createEvent(c *fiber.Ctx) error {
	var payload eventCreate
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	name := strings.TrimSpace(payload.Name)
	url := strings.TrimSpace(payload.URL)
	if name == "" || len(name) > 200 {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "name must be 1-200 characters")
	}
	if len(url) < 8 {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "url is too short")
	}
	active := true
	if payload.Active != nil {
		active = *payload.Active
	}

	id, err := s.Store.UpsertEvent(name, url, active)
	if err != nil {
		return err
	}
	event, err := s.Store.GetEvent(id)
	if err != nil {
		return err
	}
	if event == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "event created but not found")
	}
	return c.JSON(event)
}

func (s *Server) scrapeOne(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid event id")
	}
	event, err := s.Store.GetEvent(int64(id))
	if err != nil {
		return err
	}
	if event == nil {
		return fiber.NewError(fiber.StatusNotFound, "event not found")
	}
	result, err := s.Tracker.RunOnce(c.Context(), *event)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (s *Server) scrapeAll(c *fiber.Ctx) error {
	results := s.Sched.RunAll(c.Context())
	if results == nil {
		results = []models.RunResult{}
	}
	return c.JSON(results)
}

func (s *Server) history(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid event id")
	}
	event, err := s.Store.GetEvent(int64(id))
	if err != nil {
		return err
	}
	if event == nil {
		return fiber.NewError(fiber.StatusNotFound, "event not found")
	}
	entries, err := s.Store.HistorySeries(int64(id), c.QueryInt("limit", 500))
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []models.PriceEntry{}
	}
	return c.JSON(entries)
}

func (s *Server) chart(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid event id")
	}
	event, err := s.Store.GetEvent(int64(id))
	if err != nil {
		return err
	}
	if event == nil {
		return fiber.NewError(fiber.StatusNotFound, "event not found")
	}
	points, err := s.Store.ChartPoints(int64(id))
	if err != nil {
		return err
	}
	if points == nil {
		points = []models.ChartPoint{}
	}
	return c.JSON(points)
}

func (s *Server) listSubscribers(c *fiber.Ctx) error {
	var eventID *int64
	if v := c.QueryInt("event_id", -1); v >= 0 {
		id := int64(v)
		eventID = &id
	}
	subs, err := s.Store.ListSubscribers(eventID)
	if err != nil {
		return err
	}
	if subs == nil {
		subs = []models.Subscriber{}
	}
	return c.JSON(subs)
}

func (s *Server) createSubscriber(c *fiber.Ctx) error {
	var payload subscriberCreate
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	email := strings.TrimSpace(payload.Email)
	if len(email) < 5 || len(email) > 320 || !strings.Contains(email, "@") {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid email")
	}
	if payload.EventID != nil {
		event, err := s.Store.GetEvent(*payload.EventID)
		if err != nil {
			return err
		}
		if event == nil {
			return fiber.NewError(fiber.StatusNotFound, "event not found")
		}
	}

	id, err := s.Store.UpsertSubscriber(email, payload.EventID)
	if err != nil {
		return err
	}
	sub, err := s.Store.GetSubscriber(id)
	if err != nil {
		return err
	}
	if sub == nil {
		return c.JSON(fiber.Map{"id": id, "email": strings.ToLower(email), "event_id": payload.EventID})
	}
	return c.JSON(sub)
}

func (s *Server) deleteSubscriber(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid subscriber id")
	}
	if err := s.Store.DeactivateSubscriber(int64(id)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) listRuns(c *fiber.Ctx) error {
	var eventID *int64
	if v := c.QueryInt("event_id", -1); v >= 0 {
		id := int64(v)
		eventID = &id
	}
	runs, err := s.Store.ListRuns(eventID, c.QueryInt("limit", 100))
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []models.ScrapeRun{}
	}
	return c.JSON(runs)
}
