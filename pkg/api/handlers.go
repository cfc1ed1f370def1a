package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rotaplan/rotaplan/internal/config"
	"github.com/rotaplan/rotaplan/pkg/core/services"
	"github.com/rotaplan/rotaplan/pkg/db"
	"github.com/rotaplan/rotaplan/pkg/metrics"
)

// Handler carries the dependencies shared by all route handlers.
type Handler struct {
	store  db.Database
	cfg    *config.Config
	logger *zap.Logger
	sink   *metrics.Sink
}

func NewHandler(store db.Database, cfg *config.Config, logger *zap.Logger, sink *metrics.Sink) *Handler {
	return &Handler{store: store, cfg: cfg, logger: logger, sink: sink}
}

type generateRequest struct {
	Year   int  `json:"year"`
	Month  int  `json:"month"`
	Commit bool `json:"commit"`
}

type assignmentResponse struct {
	ID          string     `json:"id"`
	EventID     string     `json:"event_id"`
	PersonID    string     `json:"person_id"`
	SlotIndex   int        `json:"slot_index"`
	Status      string     `json:"status"`
	Reason      string     `json:"reason,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

type eventResponse struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Category      string `json:"category"`
	Label         string `json:"label,omitempty"`
	RequiredCount int    `json:"required_count"`
}

type proposalResponse struct {
	Event      eventResponse      `json:"event"`
	Assignment assignmentResponse `json:"assignment"`
}

type unfilledResponse struct {
	Event     eventResponse `json:"event"`
	SlotIndex int           `json:"slot_index"`
	Reason    string        `json:"reason"`
}

type generateResponse struct {
	Year          int                `json:"year"`
	Month         int                `json:"month"`
	Committed     bool               `json:"committed"`
	EventsCreated int                `json:"events_created"`
	Proposals     []proposalResponse `json:"proposals"`
	Unfilled      []unfilledResponse `json:"unfilled"`
}

type monthEventResponse struct {
	Event       eventResponse        `json:"event"`
	Assignments []assignmentResponse `json:"assignments"`
}

type reminderResponse struct {
	Event  eventResponse `json:"event"`
	Person struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"person"`
}

// POST /api/v1/schedule/generate
func (h *Handler) Generate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	result, err := services.Generate(c.Request().Context(), h.store, h.cfg, h.logger, req.Year, time.Month(req.Month), req.Commit)
	if err != nil {
		return h.mapError(err)
	}
	h.sink.RecordGeneration(result.Committed, len(result.Proposals), len(result.Unfilled))

	resp := generateResponse{
		Year:          result.Year,
		Month:         int(result.Month),
		Committed:     result.Committed,
		EventsCreated: len(result.EventsCreated),
		Proposals:     make([]proposalResponse, 0, len(result.Proposals)),
		Unfilled:      make([]unfilledResponse, 0, len(result.Unfilled)),
	}
	for _, p := range result.Proposals {
		resp.Proposals = append(resp.Proposals, proposalResponse{
			Event:      toEventResponse(p.Event),
			Assignment: toAssignmentResponse(p.Assignment),
		})
	}
	for _, u := range result.Unfilled {
		resp.Unfilled = append(resp.Unfilled, unfilledResponse{
			Event:     toEventResponse(u.Event),
			SlotIndex: u.SlotIndex,
			Reason:    u.Reason,
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// GET /api/v1/schedule/:year/:month
func (h *Handler) MonthView(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "invalid year"})
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "invalid month"})
	}

	events, err := services.ListEventsWithAssignments(c.Request().Context(), h.store, h.logger, year, time.Month(month))
	if err != nil {
		return h.mapError(err)
	}

	resp := make([]monthEventResponse, 0, len(events))
	for _, e := range events {
		item := monthEventResponse{
			Event:       toEventResponse(e.Event),
			Assignments: make([]assignmentResponse, 0, len(e.Assignments)),
		}
		for _, a := range e.Assignments {
			item.Assignments = append(item.Assignments, toAssignmentResponse(a))
		}
		resp = append(resp, item)
	}

	return c.JSON(http.StatusOK, resp)
}

type confirmRequest struct {
	Actor string `json:"actor"`
}

// POST /api/v1/assignments/:id/confirm
func (h *Handler) Confirm(c echo.Context) error {
	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	assignment, err := services.Confirm(c.Request().Context(), h.store, h.logger, c.Param("id"), req.Actor)
	if err != nil {
		return h.mapError(err)
	}
	h.sink.RecordTransition(assignment.Status)

	return c.JSON(http.StatusOK, toAssignmentResponse(*assignment))
}

type declineRequest struct {
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

// POST /api/v1/assignments/:id/decline
func (h *Handler) Decline(c echo.Context) error {
	var req declineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	assignment, err := services.Decline(c.Request().Context(), h.store, h.logger, c.Param("id"), req.Reason, req.Actor)
	if err != nil {
		return h.mapError(err)
	}
	h.sink.RecordTransition(assignment.Status)

	return c.JSON(http.StatusOK, toAssignmentResponse(*assignment))
}

type swapRequest struct {
	NewPersonID string `json:"new_person_id"`
	Override    bool   `json:"override"`
	Actor       string `json:"actor"`
}

// POST /api/v1/assignments/:id/swap
func (h *Handler) Swap(c echo.Context) error {
	var req swapRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.NewPersonID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "new_person_id is required"})
	}

	replacement, err := services.Swap(c.Request().Context(), h.store, h.cfg, h.logger, c.Param("id"), req.NewPersonID, req.Override, req.Actor)
	if err != nil {
		return h.mapError(err)
	}
	h.sink.RecordTransition(db.StatusSwapped)

	return c.JSON(http.StatusOK, toAssignmentResponse(*replacement))
}

// GET /api/v1/reminders?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handler) Reminders(c echo.Context) error {
	start := c.QueryParam("start")
	end := c.QueryParam("end")
	if start == "" || end == "" {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "start and end are required"})
	}

	pairs, err := services.ListConfirmedInRange(c.Request().Context(), h.store, h.logger, start, end)
	if err != nil {
		return h.mapError(err)
	}

	resp := make([]reminderResponse, 0, len(pairs))
	for _, pair := range pairs {
		var r reminderResponse
		r.Event = toEventResponse(pair.Event)
		r.Person.ID = pair.Person.ID
		r.Person.Name = pair.Person.Name
		r.Person.Email = pair.Person.Email
		resp = append(resp, r)
	}

	return c.JSON(http.StatusOK, resp)
}

// mapError translates service errors to HTTP status codes
func (h *Handler) mapError(err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidPeriod):
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrSlotConflict), errors.Is(err, services.ErrDuplicateEvent):
		return echo.NewHTTPError(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrQuotaExceeded), errors.Is(err, services.ErrIneligible):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func toEventResponse(e db.Event) eventResponse {
	return eventResponse{
		ID:            e.ID,
		Date:          e.Date,
		Time:          e.Time,
		Category:      e.Category,
		Label:         e.Label,
		RequiredCount: e.RequiredCount,
	}
}

func toAssignmentResponse(a db.Assignment) assignmentResponse {
	return assignmentResponse{
		ID:          a.ID,
		EventID:     a.EventID,
		PersonID:    a.PersonID,
		SlotIndex:   a.SlotIndex,
		Status:      a.Status,
		Reason:      a.Reason,
		ConfirmedAt: a.ConfirmedAt,
	}
}
