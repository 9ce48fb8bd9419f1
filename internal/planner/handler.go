// internal/planner/handler.go
package planner

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/time/rate"

	"spacevents/internal/catalog"
	"spacevents/internal/inventory"
	"spacevents/internal/ledger"
)

const (
	codeInvalidRequestBody = "invalid_request_body"
	codeRateLimited        = "rate_limited"
	codeInternalError      = "internal_error"
)

// Handler exposes the planner to a form front end over HTTP/JSON.
type Handler struct {
	service Service
	limiter *rate.Limiter
}

// NewHandler wraps service. limiter guards the routes that change state;
// nil disables limiting.
func NewHandler(service Service, limiter *rate.Limiter) *Handler {
	return &Handler{service: service, limiter: limiter}
}

// Routes mounts every endpoint on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Get("/event-types", h.handleEventTypes)
	r.Get("/event-types/{name}/resources", h.handleDefaultResources)
	r.Get("/event-types/{name}/recommended", h.handleRecommendedResources)
	r.Get("/resources", h.handleResources)
	r.Get("/events", h.handleListEvents)

	r.Group(func(r chi.Router) {
		r.Use(h.limit)
		r.Post("/events", h.handleCreateEvent)
		r.Delete("/events", h.handleDeleteEvents)
	})
}

func (h *Handler) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.limiter != nil && !h.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, codeRateLimited, "", "too many submissions, try again shortly")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleEventTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, eventTypesResponse{
		Placeholder: catalog.Placeholder,
		EventTypes:  h.service.EventTypes(),
		Mode:        string(h.service.Mode()),
	})
}

func (h *Handler) handleDefaultResources(w http.ResponseWriter, r *http.Request) {
	name := pathName(r)
	writeJSON(w, http.StatusOK, resourceNamesResponse{
		Type:      name,
		Resources: h.service.DefaultResources(name),
	})
}

func (h *Handler) handleRecommendedResources(w http.ResponseWriter, r *http.Request) {
	name := pathName(r)
	writeJSON(w, http.StatusOK, resourceNamesResponse{
		Type:      name,
		Resources: h.service.RecommendedResources(name),
	})
}

func (h *Handler) handleResources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, resourcesResponse{Resources: h.service.Resources()})
}

// handleListEvents renders the ledger with 1-based display numbers. The body
// digest is sent as an ETag so a polling view can skip unchanged lists.
func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events := h.service.ListAll()
	resp := listEventsResponse{Count: len(events), Events: make([]eventView, len(events))}
	for i, e := range events {
		resp.Events[i] = eventView{Number: i + 1, Event: e}
	}

	body, err := json.Marshal(resp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternalError, "", "internal error")
		return
	}
	sum := blake2b.Sum256(body)
	etag := strconv.Quote(hex.EncodeToString(sum[:16]))

	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "", "invalid request body")
		return
	}

	event, err := h.service.Create(r.Context(), CreateInput{
		Type:      req.Type,
		Day:       string(req.Day),
		Month:     string(req.Month),
		Year:      string(req.Year),
		Resources: req.Resources,
	})

	var persistErr *PersistenceError
	if err != nil && !errors.As(err, &persistErr) {
		writeServiceError(w, err)
		return
	}

	resp := createEventResponse{
		Event:   event,
		Count:   h.service.Count(),
		Message: fmt.Sprintf("Evento '%s' creado para el %s", event.Type, event.Date),
	}
	if persistErr != nil {
		resp.Warning = persistErr.Error()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleDeleteEvents(w http.ResponseWriter, r *http.Request) {
	var req deleteEventsRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "", "invalid request body")
		return
	}

	deleted, err := h.service.DeleteMany(r.Context(), req.Indices)

	var persistErr *PersistenceError
	if err != nil && !errors.As(err, &persistErr) {
		writeServiceError(w, err)
		return
	}

	resp := deleteEventsResponse{
		Deleted: deleted,
		Count:   h.service.Count(),
		Message: fmt.Sprintf("Se eliminaron %d evento(s) correctamente", deleted),
	}
	if persistErr != nil {
		resp.Warning = persistErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeServiceError(w http.ResponseWriter, err error) {
	var verr *ledger.ValidationError
	if errors.As(err, &verr) {
		status := http.StatusBadRequest
		if errors.Is(err, ledger.ErrInsufficientResource) {
			status = http.StatusConflict
		}
		writeError(w, status, verr.Code, verr.Field, verr.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, codeInternalError, "", "internal error")
}

func pathName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

// formField accepts a date field typed either as a JSON string or a number,
// keeping the raw text so validation sees what the user entered.
type formField string

func (f *formField) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = formField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = formField(n.String())
	return nil
}

type createEventRequest struct {
	Type      string    `json:"tipo"`
	Day       formField `json:"dia"`
	Month     formField `json:"mes"`
	Year      formField `json:"anio"`
	Resources []string  `json:"recursos"`
}

type deleteEventsRequest struct {
	Indices []int `json:"indices"`
}

type eventTypesResponse struct {
	Placeholder string   `json:"placeholder"`
	EventTypes  []string `json:"tipos_evento"`
	Mode        string   `json:"modo"`
}

type resourceNamesResponse struct {
	Type      string   `json:"tipo"`
	Resources []string `json:"recursos"`
}

type resourcesResponse struct {
	Resources []inventory.Resource `json:"recursos"`
}

type eventView struct {
	Number int `json:"numero"`
	ledger.Event
}

type listEventsResponse struct {
	Count  int         `json:"count"`
	Events []eventView `json:"events"`
}

type createEventResponse struct {
	Event   ledger.Event `json:"event"`
	Count   int          `json:"count"`
	Message string       `json:"message"`
	Warning string       `json:"warning,omitempty"`
}

type deleteEventsResponse struct {
	Deleted int    `json:"deleted"`
	Count   int    `json:"count"`
	Message string `json:"message"`
	Warning string `json:"warning,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, field, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code, Field: field})
}
