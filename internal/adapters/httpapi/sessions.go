package httpapi

import (
	"net/http"
	"time"

	"afriqar/internal/catalog"
	"afriqar/internal/simulation"
)

type filtersRequest struct {
	Filters catalog.FilterState `json:"filters"`
	Sort    catalog.SortMode    `json:"sort"`
}

type selectRequest struct {
	ID string `json:"id"`
}

// handleScreens routes:
//
//	GET    /screens
//	POST   /screens                {resource}
//	POST   /screens/{resource}
//	GET    /screens/{id}
//	DELETE /screens/{id}
//	PUT    /screens/{id}/filters
//	POST   /screens/{id}/selection
//	DELETE /screens/{id}/selection
func (h *Handler) handleScreens(w http.ResponseWriter, r *http.Request, rest []string) {
	switch len(rest) {
	case 0:
		if r.Method == http.MethodPost {
			var req struct {
				Resource string `json:"resource"`
			}
			if err := decodeBody(r, &req); err != nil {
				h.writeErr(w, r, err)
				return
			}
			if req.Resource == "" {
				h.writeErr(w, r, badRequest("resource is required"))
				return
			}
			h.mountScreen(w, r, req.Resource)
			return
		}
		if r.Method != http.MethodGet {
			h.writeErr(w, r, errMethodNotAllowed)
			return
		}
		mounted := h.Screens.List()
		out := make([]map[string]any, 0, len(mounted))
		for _, s := range mounted {
			out = append(out, map[string]any{
				"screen":     s.ID(),
				"resource":   s.Resource(),
				"mountedAt":  s.MountedAt(),
				"lastActive": s.LastActive(),
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"screens": out})
	case 1:
		switch r.Method {
		case http.MethodPost:
			h.mountScreen(w, r, rest[0])
		case http.MethodGet:
			s, err := h.Screens.Get(rest[0])
			if err != nil {
				h.writeErr(w, r, err)
				return
			}
			h.writeScreen(w, r, http.StatusOK, s)
		case http.MethodDelete:
			if err := h.Screens.Unmount(rest[0]); err != nil {
				h.writeErr(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			h.writeErr(w, r, errMethodNotAllowed)
		}
	case 2:
		s, err := h.Screens.Get(rest[0])
		if err != nil {
			h.writeErr(w, r, err)
			return
		}
		switch {
		case rest[1] == "filters" && r.Method == http.MethodPut:
			var req filtersRequest
			if err := decodeBody(r, &req); err != nil {
				h.writeErr(w, r, err)
				return
			}
			if err := s.SetFilters(req.Filters, req.Sort); err != nil {
				h.writeErr(w, r, err)
				return
			}
		case rest[1] == "filters" && r.Method == http.MethodDelete:
			if err := s.Reset(); err != nil {
				h.writeErr(w, r, err)
				return
			}
		case rest[1] == "selection" && r.Method == http.MethodPost:
			var req selectRequest
			if err := decodeBody(r, &req); err != nil {
				h.writeErr(w, r, err)
				return
			}
			if req.ID == "" {
				h.writeErr(w, r, badRequest("id is required"))
				return
			}
			ctx, cancel, err := h.loadContext(r)
			if err != nil {
				h.writeErr(w, r, err)
				return
			}
			err = s.Select(ctx, req.ID)
			cancel()
			if err != nil {
				h.writeErr(w, r, err)
				return
			}
		case rest[1] == "selection" && r.Method == http.MethodDelete:
			if err := s.Back(); err != nil {
				h.writeErr(w, r, err)
				return
			}
		case rest[1] == "filters" || rest[1] == "selection":
			h.writeErr(w, r, errMethodNotAllowed)
			return
		default:
			http.NotFound(w, r)
			return
		}
		h.writeScreen(w, r, http.StatusOK, s)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) mountScreen(w http.ResponseWriter, r *http.Request, resource string) {
	s, err := h.Screens.Mount(resource)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeScreen(w, r, http.StatusCreated, s)
}

func (h *Handler) writeScreen(w http.ResponseWriter, r *http.Request, status int, s catalog.Mounted) {
	ctx, cancel, err := h.loadContext(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	defer cancel()
	view, err := s.View(ctx)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, status, view)
}

type simulationView struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
	State      any       `json:"state,omitempty"`
}

func (h *Handler) simulationView(inst simulation.Instance, state any) simulationView {
	active, _ := h.Simulations.LastActive(inst.ID())
	return simulationView{ID: inst.ID(), Kind: inst.Kind(), CreatedAt: inst.CreatedAt(), LastActive: active, State: state}
}

// handleSimulations routes:
//
//	GET    /simulations
//	POST   /simulations            {kind}
//	POST   /simulations/{kind}
//	GET    /simulations/{id}
//	DELETE /simulations/{id}
//	POST   /simulations/{id}/trigger
//	POST   /simulations/{id}/select
func (h *Handler) handleSimulations(w http.ResponseWriter, r *http.Request, rest []string) {
	switch len(rest) {
	case 0:
		if r.Method == http.MethodPost {
			var req struct {
				Kind string `json:"kind"`
			}
			if err := decodeBody(r, &req); err != nil {
				h.writeErr(w, r, err)
				return
			}
			h.createSimulation(w, r, req.Kind)
			return
		}
		if r.Method != http.MethodGet {
			h.writeErr(w, r, errMethodNotAllowed)
			return
		}
		insts := h.Simulations.List()
		out := make([]simulationView, 0, len(insts))
		for _, inst := range insts {
			out = append(out, h.simulationView(inst, nil))
		}
		writeJSON(w, http.StatusOK, map[string]any{"simulations": out, "kinds": simulation.Kinds})
	case 1:
		switch r.Method {
		case http.MethodPost:
			h.createSimulation(w, r, rest[0])
		case http.MethodGet:
			inst, err := h.Simulations.Get(rest[0])
			if err != nil {
				h.writeErr(w, r, err)
				return
			}
			h.writeSimulation(w, r, http.StatusOK, inst)
		case http.MethodDelete:
			if err := h.Simulations.Delete(rest[0]); err != nil {
				h.writeErr(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			h.writeErr(w, r, errMethodNotAllowed)
		}
	case 2:
		inst, err := h.Simulations.Get(rest[0])
		if err != nil {
			h.writeErr(w, r, err)
			return
		}
		if rest[1] != "trigger" && rest[1] != "select" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodPost {
			h.writeErr(w, r, errMethodNotAllowed)
			return
		}
		if rest[1] == "trigger" {
			var in simulation.Trigger
			if err := decodeBody(r, &in); err != nil {
				h.writeErr(w, r, err)
				return
			}
			err = inst.Trigger(r.Context(), in)
		} else {
			var req selectRequest
			if err := decodeBody(r, &req); err != nil {
				h.writeErr(w, r, err)
				return
			}
			err = inst.Select(r.Context(), req.ID)
		}
		if err != nil {
			h.writeErr(w, r, err)
			return
		}
		h.writeSimulation(w, r, http.StatusOK, inst)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) createSimulation(w http.ResponseWriter, r *http.Request, kind string) {
	inst, err := h.Simulations.Create(kind)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeSimulation(w, r, http.StatusCreated, inst)
}

func (h *Handler) writeSimulation(w http.ResponseWriter, r *http.Request, status int, inst simulation.Instance) {
	ctx, cancel, err := h.loadContext(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	defer cancel()
	state, err := inst.View(ctx)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, status, h.simulationView(inst, state))
}
