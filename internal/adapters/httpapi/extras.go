package httpapi

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"afriqar/internal/catalog"
	"afriqar/internal/content"
	"afriqar/internal/familytree"
	"afriqar/internal/gamification"
	"afriqar/internal/logging"
)

type reorderRequest struct {
	ActiveID string `json:"activeId"`
	OverID   string `json:"overId"`
}

// handleFamilyTree routes:
//
//	GET    /family-tree
//	POST   /family-tree
//	GET    /family-tree/{id}
//	DELETE /family-tree/{id}
//	GET    /family-tree/{id}/generations
//	POST   /family-tree/{id}/reorder          {activeId, overId}
//	GET    /family-tree/{id}/members
//	POST   /family-tree/{id}/members
//	GET    /family-tree/{id}/members/{member}
//	PUT    /family-tree/{id}/members/{member}
//	DELETE /family-tree/{id}/members/{member}
func (h *Handler) handleFamilyTree(w http.ResponseWriter, r *http.Request, rest []string) {
	if len(rest) == 0 {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"sessions": h.FamilyTree.List()})
		case http.MethodPost:
			sess, tree := h.FamilyTree.Open()
			writeJSON(w, http.StatusCreated, map[string]any{"session": sess, "members": tree.List()})
		default:
			h.writeErr(w, r, errMethodNotAllowed)
		}
		return
	}

	tree, err := h.FamilyTree.Get(rest[0])
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if len(rest) == 1 {
		switch r.Method {
		case http.MethodGet:
			sess, err := h.FamilyTree.Describe(rest[0])
			if err != nil {
				h.writeErr(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"session": sess, "members": tree.List()})
		case http.MethodDelete:
			if err := h.FamilyTree.Delete(rest[0]); err != nil {
				h.writeErr(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			h.writeErr(w, r, errMethodNotAllowed)
		}
		return
	}

	switch rest[1] {
	case "members":
		h.handleMembers(w, r, tree, rest[2:])
	case "generations":
		if len(rest) != 2 {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			h.writeErr(w, r, errMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"generations": tree.Generations()})
	case "reorder":
		if len(rest) != 2 {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodPost {
			h.writeErr(w, r, errMethodNotAllowed)
			return
		}
		var req reorderRequest
		if err := decodeBody(r, &req); err != nil {
			h.writeErr(w, r, err)
			return
		}
		if err := tree.Move(req.ActiveID, req.OverID); err != nil {
			h.writeErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"members": tree.List()})
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleMembers(w http.ResponseWriter, r *http.Request, tree familytree.Repository, rest []string) {
	switch {
	case len(rest) == 0 && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"members": tree.List()})
	case len(rest) == 0 && r.Method == http.MethodPost:
		var m familytree.Member
		if err := decodeBody(r, &m); err != nil {
			h.writeErr(w, r, err)
			return
		}
		m.ID = ""
		saved, err := tree.Save(m)
		if err != nil {
			h.writeErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"member": saved})
	case len(rest) == 1 && r.Method == http.MethodGet:
		m, ok := tree.Get(rest[0])
		if !ok {
			h.writeErr(w, r, familytree.ErrNotFound{ID: rest[0]})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"member": m})
	case len(rest) == 1 && r.Method == http.MethodPut:
		if _, ok := tree.Get(rest[0]); !ok {
			h.writeErr(w, r, familytree.ErrNotFound{ID: rest[0]})
			return
		}
		var m familytree.Member
		if err := decodeBody(r, &m); err != nil {
			h.writeErr(w, r, err)
			return
		}
		m.ID = rest[0]
		saved, err := tree.Save(m)
		if err != nil {
			h.writeErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"member": saved})
	case len(rest) == 1 && r.Method == http.MethodDelete:
		if err := tree.Delete(rest[0]); err != nil {
			h.writeErr(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case len(rest) <= 1:
		h.writeErr(w, r, errMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

// handleGamification serves GET /gamification and GET /gamification/progress?points=N.
func (h *Handler) handleGamification(w http.ResponseWriter, r *http.Request, rest []string) {
	if h.Documents == nil || len(rest) > 1 || (len(rest) == 1 && rest[0] != "progress") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		h.writeErr(w, r, errMethodNotAllowed)
		return
	}
	var points int
	if len(rest) == 1 {
		raw := r.URL.Query().Get("points")
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeErr(w, r, badRequest("invalid points %q", raw))
			return
		}
		points = n
	}
	doc, err := content.LoadDocument[gamification.Document](r.Context(), h.Documents, content.DocGamification)
	if err != nil {
		h.documentUnavailable(w, content.DocGamification, err)
		return
	}
	if len(rest) == 0 {
		writeJSON(w, http.StatusOK, doc)
		return
	}
	writeJSON(w, http.StatusOK, gamification.Progress(doc.Levels, points))
}

func (h *Handler) handleContact(w http.ResponseWriter, r *http.Request, rest []string) {
	if h.Documents == nil || len(rest) != 0 {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		h.writeErr(w, r, errMethodNotAllowed)
		return
	}
	doc, err := content.LoadDocument[content.ContactDocument](r.Context(), h.Documents, content.DocContact)
	if err != nil {
		h.documentUnavailable(w, content.DocContact, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) documentUnavailable(w http.ResponseWriter, document string, err error) {
	logging.OrNop(h.Logger).Warn("document unavailable", zap.String("document", document), zap.Error(err))
	writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": document + " unavailable", "status": catalog.StatusFailed})
}

type exportRequest struct {
	Resource    string              `json:"resource"`
	Filters     catalog.FilterState `json:"filters"`
	Sort        catalog.SortMode    `json:"sort"`
	Formats     []string            `json:"formats"`
	RequestedBy string              `json:"requested_by"`
	Reason      string              `json:"reason"`
}

func (h *Handler) handleExports(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case len(rest) == 0 && r.Method == http.MethodPost:
		var req exportRequest
		if err := decodeBody(r, &req); err != nil {
			h.writeErr(w, r, err)
			return
		}
		if req.Resource == "" {
			h.writeErr(w, r, badRequest("resource is required"))
			return
		}
		formats := make([]ExportFormat, 0, len(req.Formats))
		for _, name := range req.Formats {
			f, err := ParseExportFormat(name)
			if err != nil {
				h.writeErr(w, r, badRequest("%v", err))
				return
			}
			formats = append(formats, f)
		}
		record, err := h.Exports.EnqueueExport(r.Context(), ExportInput{
			Resource:    req.Resource,
			Filters:     req.Filters,
			Sort:        req.Sort,
			Formats:     formats,
			RequestedBy: req.RequestedBy,
			Reason:      req.Reason,
		})
		if err != nil {
			h.writeErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"export": record})
	case len(rest) == 1 && r.Method == http.MethodGet:
		record, ok := h.Exports.GetExport(rest[0])
		if !ok {
			writeError(w, http.StatusNotFound, "export not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"export": record})
	case len(rest) <= 1:
		h.writeErr(w, r, errMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}
