package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/dtarnawsky/dust/internal/api/respond"
	"github.com/dtarnawsky/dust/internal/engine"
	"github.com/dtarnawsky/dust/internal/model"
	"github.com/dtarnawsky/dust/internal/timefmt"
)

// QueryHandler serves dataset queries through the engine dispatcher.
type QueryHandler struct {
	dispatcher *engine.Dispatcher
	zone       *time.Location
}

// NewQueryHandler builds a QueryHandler. zone is the event timezone used to
// interpret day query parameters.
func NewQueryHandler(d *engine.Dispatcher, zone *time.Location) *QueryHandler {
	return &QueryHandler{dispatcher: d, zone: zone}
}

// dayResponse decorates a Day with its long display title, e.g. "Tuesday 29th".
type dayResponse struct {
	model.Day
	Title string `json:"title"`
}

// GetDays handles GET /api/days.
func (h *QueryHandler) GetDays(w http.ResponseWriter, r *http.Request) {
	res, err := h.dispatcher.Do(r.Context(), engine.Command{Op: engine.OpGetDays})
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	days := make([]dayResponse, 0, len(res.Days))
	for _, d := range res.Days {
		days = append(days, dayResponse{
			Day:   d,
			Title: fmt.Sprintf("%s %s", d.Date.Format("Monday"), timefmt.Ordinal(d.Date.Day())),
		})
	}
	respond.WriteJSON(w, http.StatusOK, days)
}

// GetEvents handles GET /api/events. With q or day parameters it searches;
// otherwise it pages through the collection with offset and count.
func (h *QueryHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Has("q") || q.Has("day") {
		day, err := h.parseDay(q.Get("day"))
		if err != nil {
			respond.WriteBadRequest(w, "day must be formatted as 2006-01-02")
			return
		}
		res, err := h.dispatcher.Do(r.Context(), engine.Command{
			Op:    engine.OpFindEvents,
			Query: q.Get("q"),
			Day:   day,
		})
		if err != nil {
			respond.WriteInternalError(w, err.Error())
			return
		}
		respond.WriteJSON(w, http.StatusOK, res.Events)
		return
	}

	offset, count := pagination(q.Get("offset"), q.Get("count"))
	res, err := h.dispatcher.Do(r.Context(), engine.Command{Op: engine.OpGetEvents, Offset: offset, Count: count})
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, res.Events)
}

// GetEvent handles GET /api/events/{uid}.
func (h *QueryHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	res, err := h.dispatcher.Do(r.Context(), engine.Command{Op: engine.OpFindEvent, UID: mux.Vars(r)["uid"]})
	h.writeOne(w, res.Event, err)
}

// GetCamps handles GET /api/camps with either search (q) or pagination.
func (h *QueryHandler) GetCamps(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Has("q") {
		res, err := h.dispatcher.Do(r.Context(), engine.Command{Op: engine.OpFindCamps, Query: q.Get("q")})
		if err != nil {
			respond.WriteInternalError(w, err.Error())
			return
		}
		respond.WriteJSON(w, http.StatusOK, res.Camps)
		return
	}
	offset, count := pagination(q.Get("offset"), q.Get("count"))
	res, err := h.dispatcher.Do(r.Context(), engine.Command{Op: engine.OpGetCamps, Offset: offset, Count: count})
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, res.Camps)
}

// GetCamp handles GET /api/camps/{uid}.
func (h *QueryHandler) GetCamp(w http.ResponseWriter, r *http.Request) {
	res, err := h.dispatcher.Do(r.Context(), engine.Command{Op: engine.OpFindCamp, UID: mux.Vars(r)["uid"]})
	h.writeOne(w, res.Camp, err)
}

// GetArts handles GET /api/art; an absent q returns everything.
func (h *QueryHandler) GetArts(w http.ResponseWriter, r *http.Request) {
	res, err := h.dispatcher.Do(r.Context(), engine.Command{Op: engine.OpFindArts, Query: r.URL.Query().Get("q")})
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, res.Arts)
}

// GetArt handles GET /api/art/{uid}.
func (h *QueryHandler) GetArt(w http.ResponseWriter, r *http.Request) {
	res, err := h.dispatcher.Do(r.Context(), engine.Command{Op: engine.OpFindArt, UID: mux.Vars(r)["uid"]})
	h.writeOne(w, res.Art, err)
}

// queryRequest is the raw message-boundary payload.
type queryRequest struct {
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

// Query handles POST /api/query, the raw method/args dispatch protocol. An
// unknown method yields {"result": null}, never an error status.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid request body")
		return
	}
	res, err := h.dispatcher.Dispatch(r.Context(), req.Method, req.Args)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{"result": res})
}

func (h *QueryHandler) writeOne(w http.ResponseWriter, v any, err error) {
	if errors.Is(err, model.ErrNotFound) {
		respond.WriteNotFound(w, "record not found")
		return
	}
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, v)
}

func (h *QueryHandler) parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, h.zone)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func pagination(offsetStr, countStr string) (int, int) {
	offset, _ := strconv.Atoi(offsetStr)
	count, err := strconv.Atoi(countStr)
	if err != nil || count <= 0 {
		count = 50
	}
	if offset < 0 {
		offset = 0
	}
	return offset, count
}
