package httpapi

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"afriqar/internal/catalog"
)

// reservedParams are query parameters that are not filter dimensions.
var reservedParams = map[string]struct{}{
	"sort": {}, "limit": {}, "offset": {}, "format": {}, "wait": {},
}

func (h *Handler) handleSections(w http.ResponseWriter, r *http.Request, rest []string) {
	if len(rest) != 0 {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		h.writeErr(w, r, errMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sections": h.Catalogs.Sections()})
}

func (h *Handler) handleCatalogs(w http.ResponseWriter, r *http.Request, rest []string) {
	if r.Method != http.MethodGet {
		h.writeErr(w, r, errMethodNotAllowed)
		return
	}
	switch {
	case len(rest) == 0:
		resources := h.Catalogs.Resources()
		descriptors := make([]catalog.Descriptor, 0, len(resources))
		for _, res := range resources {
			descriptors = append(descriptors, res.Describe())
		}
		sort.Slice(descriptors, func(i, j int) bool { return descriptors[i].Resource < descriptors[j].Resource })
		writeJSON(w, http.StatusOK, map[string]any{"catalogs": descriptors})
	case len(rest) == 1:
		h.handleQuery(w, r, rest[0])
	case len(rest) == 3 && rest[1] == "items":
		h.handleItem(w, r, rest[0], rest[2])
	default:
		http.NotFound(w, r)
	}
}

// parseQuery reads filters, sort and window from the URL.
func parseQuery(values url.Values) (catalog.Query, error) {
	q := catalog.Query{Filters: catalog.FilterState{}}
	for key, vals := range values {
		if _, reserved := reservedParams[key]; reserved || len(vals) == 0 {
			continue
		}
		q.Filters[key] = vals[0]
	}
	q.Sort = catalog.SortMode(strings.ToLower(values.Get("sort")))
	var err error
	if q.Limit, err = intParam(values, "limit"); err != nil {
		return q, err
	}
	if q.Offset, err = intParam(values, "offset"); err != nil {
		return q, err
	}
	return q, nil
}

func intParam(values url.Values, name string) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, badRequest("invalid %s %q", name, raw)
	}
	return n, nil
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request, name string) {
	res, err := h.Catalogs.Resource(name)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	format := negotiateFormat(r)
	if format == "" {
		writeError(w, http.StatusNotAcceptable, "requested format not supported")
		return
	}
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	ctx, cancel, err := h.loadContext(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	defer cancel()

	page, err := res.Query(ctx, q)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if format == string(FormatCSV) && page.Status == catalog.StatusReady {
		streamCSV(w, name, page)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) handleItem(w http.ResponseWriter, r *http.Request, name, id string) {
	res, err := h.Catalogs.Resource(name)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	ctx, cancel, err := h.loadContext(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	defer cancel()
	item, err := res.Find(ctx, id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resource": name, "item": item})
}

func negotiateFormat(r *http.Request) string {
	wanted := strings.ToLower(r.URL.Query().Get("format"))
	if wanted == "" {
		if strings.Contains(r.Header.Get("Accept"), "text/csv") {
			wanted = string(FormatCSV)
		} else {
			wanted = string(FormatJSON)
		}
	}
	switch ExportFormat(wanted) {
	case FormatCSV, FormatJSON:
		return wanted
	}
	return ""
}

func streamCSV(w http.ResponseWriter, resource string, page catalog.Page) {
	filename := fmt.Sprintf("%s-%s.csv", resource, time.Now().UTC().Format("20060102T150405Z"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	header, rows := page.Table()
	_ = writeCSV(w, header, rows)
}
