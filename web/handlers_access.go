package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/openlearn/coursegate/domain/catalog"
)

// AccessResponse represents an access decision.
type AccessResponse struct {
	ModuleID string `json:"module_id"`
	UserID   string `json:"user_id,omitempty"`
	Allowed  bool   `json:"allowed"`
	Via      string `json:"via"`
}

// LessonResponse represents a lesson in a listing.
type LessonResponse struct {
	ID          string `json:"id"`
	ModuleID    string `json:"module_id"`
	Title       string `json:"title"`
	Order       int    `json:"order"`
	FreePreview bool   `json:"free_preview"`
}

// ModuleAccess evaluates whether the caller may access a module.
func (h *Handler) ModuleAccess(w http.ResponseWriter, r *http.Request) {
	moduleID := chi.URLParam(r, "id")
	userID := userParam(r)

	result, err := h.access.CanAccessModule(r.Context(), userID, moduleID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.AccessDecisions.WithLabelValues(strconv.FormatBool(result.Allowed), string(result.Via)).Inc()
	}

	writeJSON(w, http.StatusOK, AccessResponse{
		ModuleID: moduleID,
		UserID:   userID,
		Allowed:  result.Allowed,
		Via:      string(result.Via),
	})
}

// ModuleLessons lists the lessons visible to the caller: the full ordered
// list with module access, free previews only without.
func (h *Handler) ModuleLessons(w http.ResponseWriter, r *http.Request) {
	moduleID := chi.URLParam(r, "id")
	userID := userParam(r)

	lessons, err := h.access.VisibleLessons(r.Context(), userID, moduleID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"module_id": moduleID,
		"lessons":   lessonsToResponse(lessons),
	})
}

func lessonsToResponse(lessons []catalog.Lesson) []LessonResponse {
	out := make([]LessonResponse, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, LessonResponse{
			ID:          l.ID,
			ModuleID:    l.ModuleID,
			Title:       l.Title,
			Order:       l.Order,
			FreePreview: l.FreePreview,
		})
	}
	return out
}
