package http

import (
	"bytes"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/spdash/dashboard/internal/domain"
	"github.com/spdash/dashboard/internal/service"
	"github.com/spdash/dashboard/internal/view"
)

// SessionCookie carries the dashboard session id
const SessionCookie = "spdash_session"

// LocationsFailedMessage is shown when the page cannot load its locations
const LocationsFailedMessage = "Failed to load SP locations"

// Handler contains all HTTP handlers
type Handler struct {
	dashboardSvc *service.DashboardService
	sessions     *service.SessionManager
	renderer     *view.Renderer
	tileURL      string
}

// NewHandler creates a new handler
func NewHandler(dashboardSvc *service.DashboardService, sessions *service.SessionManager, renderer *view.Renderer, tileURL string) *Handler {
	return &Handler{
		dashboardSvc: dashboardSvc,
		sessions:     sessions,
		renderer:     renderer,
		tileURL:      tileURL,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	storage := "ok"
	if err := h.dashboardSvc.Health(c.Context()); err != nil {
		storage = err.Error()
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"service":  "spdash",
		"version":  "1.0.0",
		"storage":  storage,
		"sessions": h.sessions.Len(),
	})
}

// Dashboard renders the map page. Locations are fetched once per page load.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	var buf bytes.Buffer

	set, err := h.dashboardSvc.FetchLocations(c.Context())
	if err != nil {
		log.Printf("dashboard: location load failed: %v", err)
		if err := h.renderer.Error(&buf, view.ErrorPage{
			Title:    "SP Utilization Dashboard",
			Message:  LocationsFailedMessage,
			RetryURL: "/",
		}); err != nil {
			return err
		}
		c.Type("html")
		return c.Status(fiber.StatusServiceUnavailable).Send(buf.Bytes())
	}

	if err := h.renderer.Dashboard(&buf, view.DashboardPage{
		Title: "SP Utilization Dashboard",
		Map:   view.NewMapView(set, h.tileURL),
	}); err != nil {
		return err
	}

	c.Type("html")
	return c.Send(buf.Bytes())
}

// GetLocations returns the service point list
func (h *Handler) GetLocations(c *fiber.Ctx) error {
	set, err := h.dashboardSvc.FetchLocations(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, LocationsFailedMessage)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    set.Locations,
		"count":   len(set.Locations),
		"is_mock": set.IsMock,
	})
}

// GetUtilization fetches a utilization series without touching any selection
func (h *Handler) GetUtilization(c *fiber.Ctx) error {
	var req domain.UtilizationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.SPID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "sp_id is required")
	}

	series, err := h.dashboardSvc.FetchUtilization(c.Context(), req.SPID)
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, service.LoadFailedMessage)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    series,
		"count":   len(series.Samples),
	})
}

// Select starts a utilization fetch for the session's selection
func (h *Handler) Select(c *fiber.Ctx) error {
	var req domain.UtilizationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.SPID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "sp_id is required")
	}

	ctrl := h.sessionController(c)
	if err := ctrl.Select(req.SPID); err != nil {
		if errors.Is(err, service.ErrControllerClosed) {
			return fiber.NewError(fiber.StatusConflict, "Session has ended")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to start selection")
	}

	return c.Status(fiber.StatusAccepted).JSON(selectionBody(ctrl.Snapshot()))
}

// GetSelection returns the session's selection snapshot and popup view
func (h *Handler) GetSelection(c *fiber.Ctx) error {
	ctrl, err := h.sessions.Get(c.Cookies(SessionCookie))
	if err != nil {
		return c.JSON(selectionBody(idleState()))
	}
	return c.JSON(selectionBody(ctrl.Snapshot()))
}

// LeaveSelection ends the session, cancelling any in-flight fetch
func (h *Handler) LeaveSelection(c *fiber.Ctx) error {
	if id := c.Cookies(SessionCookie); id != "" {
		if err := h.sessions.Remove(id); err != nil && !errors.Is(err, service.ErrSessionNotFound) {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to end session")
		}
	}
	c.ClearCookie(SessionCookie)
	return c.SendStatus(fiber.StatusNoContent)
}

// GetSelectionChart renders the loaded selection as an SVG chart
func (h *Handler) GetSelectionChart(c *fiber.Ctx) error {
	ctrl, err := h.sessions.Get(c.Cookies(SessionCookie))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "No selection")
	}

	state := ctrl.Snapshot()
	if view.PopupFor(state).Kind != view.PopupChart {
		return fiber.NewError(fiber.StatusNotFound, "No utilization data available")
	}

	var buf bytes.Buffer
	if err := view.RenderChart(&buf, state.Samples); err != nil {
		log.Printf("dashboard: chart render failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to render chart")
	}

	c.Set(fiber.HeaderContentType, "image/svg+xml")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(buf.Bytes())
}

// GetFetchLogs returns recent backend fetch logs
func (h *Handler) GetFetchLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	logs, err := h.dashboardSvc.RecentFetchLogs(c.Context(), c.Query("sp_id"), limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch logs")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    logs,
		"count":   len(logs),
	})
}

// sessionController returns the caller's controller, starting a session if needed
func (h *Handler) sessionController(c *fiber.Ctx) *service.Controller {
	if ctrl, err := h.sessions.Get(c.Cookies(SessionCookie)); err == nil {
		return ctrl
	}

	id, ctrl := h.sessions.Create()
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return ctrl
}

func selectionBody(state domain.SelectionState) fiber.Map {
	return fiber.Map{
		"success": true,
		"data":    state,
		"popup":   view.PopupFor(state),
	}
}

func idleState() domain.SelectionState {
	return domain.SelectionState{
		Status:  domain.StatusIdle,
		Samples: []domain.UtilizationSample{},
	}
}
