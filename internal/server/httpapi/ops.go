package httpapi

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
)

const readinessTimeout = 2 * time.Second

func (h *Handler) channelStats(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	stats, err := h.svc.Dashboard.Stats(r.Context(), u.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, stats, "Channel stats fetched successfully")
	return nil
}

func (h *Handler) channelVideos(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	page, err := h.svc.Dashboard.Videos(r.Context(), u.ID, pageFrom(r))
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, page, "Channel videos fetched successfully")
	return nil
}

func (h *Handler) healthcheck(w http.ResponseWriter, r *http.Request) error {
	respond(w, http.StatusOK, map[string]string{"status": "ok"}, "OK")
	return nil
}

func (h *Handler) liveness(w http.ResponseWriter, r *http.Request) error {
	respond(w, http.StatusOK, map[string]string{"status": "ok"}, "OK")
	return nil
}

// readiness runs every registered check. Any failure answers 503.
func (h *Handler) readiness(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(names))
	ready := true
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn(ctx, "readiness check failed", "check", name, "error", err)
			results[name] = "unavailable"
			ready = false
			continue
		}
		results[name] = "ok"
	}

	if !ready {
		writeJSON(w, http.StatusServiceUnavailable, envelope{
			Status:  http.StatusServiceUnavailable,
			Data:    results,
			Message: "Service unavailable",
		})
		return nil
	}
	respond(w, http.StatusOK, results, "Ready")
	return nil
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) error {
	return common.NotFound("Route not found")
}
