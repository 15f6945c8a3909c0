package httpapi

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"afriqar/internal/blob"
	"afriqar/internal/catalog"
	"afriqar/internal/logging"
	"afriqar/internal/metrics"
)

// ExportStatus describes the lifecycle stage of an export request.
type ExportStatus string

const (
	ExportStatusQueued    ExportStatus = "queued"
	ExportStatusRunning   ExportStatus = "running"
	ExportStatusSucceeded ExportStatus = "succeeded"
	ExportStatusFailed    ExportStatus = "failed"
)

// ExportFormat names an artifact encoding.
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatCSV  ExportFormat = "csv"
	FormatHTML ExportFormat = "html"
)

var exportContentTypes = map[ExportFormat]string{
	FormatJSON: "application/json",
	FormatCSV:  "text/csv",
	FormatHTML: "text/html",
}

// ParseExportFormat maps a requested format name.
func ParseExportFormat(name string) (ExportFormat, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := exportContentTypes[f]; !ok {
		return "", fmt.Errorf("unsupported export format %q", name)
	}
	return f, nil
}

// ExportArtifact captures a stored export artifact.
type ExportArtifact struct {
	Key         string       `json:"key"`
	Format      ExportFormat `json:"format"`
	ContentType string       `json:"content_type"`
	SizeBytes   int64        `json:"size_bytes"`
	ETag        string       `json:"etag,omitempty"`
	URL         string       `json:"url,omitempty"`
	Rows        int          `json:"rows"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ExportRecord tracks an export request and resulting artifacts.
type ExportRecord struct {
	ID          string              `json:"id"`
	Resource    string              `json:"resource"`
	Filters     catalog.FilterState `json:"filters,omitempty"`
	Sort        catalog.SortMode    `json:"sort,omitempty"`
	Formats     []ExportFormat      `json:"formats"`
	Status      ExportStatus        `json:"status"`
	Error       string              `json:"error,omitempty"`
	Artifacts   []ExportArtifact    `json:"artifacts,omitempty"`
	RequestedBy string              `json:"requested_by,omitempty"`
	Reason      string              `json:"reason,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

// ExportInput represents an enqueue request for the worker.
type ExportInput struct {
	Resource    string
	Filters     catalog.FilterState
	Sort        catalog.SortMode
	Formats     []ExportFormat
	RequestedBy string
	Reason      string
}

// ExportScheduler queues export requests and exposes status.
type ExportScheduler interface {
	EnqueueExport(ctx context.Context, input ExportInput) (ExportRecord, error)
	GetExport(id string) (ExportRecord, bool)
}

// AuditLogger records export audit entries.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditEntry captures audit trail metadata for exports.
type AuditEntry struct {
	ID         string         `json:"id"`
	Export     string         `json:"export"`
	Action     string         `json:"action"`
	Actor      string         `json:"actor"`
	Resource   string         `json:"resource"`
	Status     ExportStatus   `json:"status"`
	Reason     string         `json:"reason,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// ZapAuditLogger writes audit entries as structured log lines.
type ZapAuditLogger struct {
	Logger *zap.Logger
}

// Record implements AuditLogger.
func (l ZapAuditLogger) Record(_ context.Context, e AuditEntry) {
	logging.OrNop(l.Logger).Info("export audit",
		zap.String("audit_id", e.ID),
		zap.String("export", e.Export),
		zap.String("action", e.Action),
		zap.String("actor", e.Actor),
		zap.String("resource", e.Resource),
		zap.String("status", string(e.Status)),
		zap.String("reason", e.Reason),
		zap.Any("metadata", e.Metadata),
		zap.Time("occurred_at", e.OccurredAt),
	)
}

// ErrQueueFull is returned when the worker cannot accept more jobs.
var ErrQueueFull = errors.New("export queue full")

// WorkerOptions configures a Worker.
type WorkerOptions struct {
	QueueSize int
	Audit     AuditLogger
	Logger    *zap.Logger
	Metrics   metrics.Recorder
	// URLExpiry is the lifetime of presigned artifact URLs.
	URLExpiry time.Duration
}

// Worker snapshots catalog views into blob artifacts asynchronously.
type Worker struct {
	catalogs Resolver
	store    blob.Store
	audit    AuditLogger
	logger   *zap.Logger
	metrics  metrics.Recorder
	expiry   time.Duration

	queue chan exportTask
	mu    sync.RWMutex
	jobs  map[string]*ExportRecord

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type exportTask struct {
	id    string
	input ExportInput
}

type renderedArtifact struct {
	Artifact ExportArtifact
	Payload  []byte
}

// NewWorker constructs an export worker writing to store.
func NewWorker(catalogs Resolver, store blob.Store, opts WorkerOptions) *Worker {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 16
	}
	logger := logging.OrNop(opts.Logger)
	if opts.Audit == nil {
		opts.Audit = ZapAuditLogger{Logger: logger}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		catalogs: catalogs,
		store:    store,
		audit:    opts.Audit,
		logger:   logger,
		metrics:  metrics.OrNop(opts.Metrics),
		expiry:   opts.URLExpiry,
		queue:    make(chan exportTask, opts.QueueSize),
		jobs:     make(map[string]*ExportRecord),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins processing export requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for completion.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case task := <-w.queue:
			w.process(task)
		}
	}
}

// EnqueueExport validates the request against the resource schema and
// schedules it. The returned record is queued.
func (w *Worker) EnqueueExport(ctx context.Context, input ExportInput) (ExportRecord, error) {
	if w.store == nil {
		return ExportRecord{}, fmt.Errorf("export store not configured")
	}
	res, err := w.catalogs.Resource(input.Resource)
	if err != nil {
		return ExportRecord{}, err
	}
	if err := res.ValidateQuery(catalog.Query{Filters: input.Filters, Sort: input.Sort}); err != nil {
		return ExportRecord{}, err
	}

	formats := input.Formats
	if len(formats) == 0 {
		formats = []ExportFormat{FormatJSON, FormatCSV}
	}
	uniq := make([]ExportFormat, 0, len(formats))
	seen := make(map[ExportFormat]struct{})
	for _, f := range formats {
		if _, dup := seen[f]; dup {
			continue
		}
		if _, ok := exportContentTypes[f]; !ok {
			return ExportRecord{}, fmt.Errorf("unsupported export format %q", f)
		}
		uniq = append(uniq, f)
		seen[f] = struct{}{}
	}
	input.Formats = uniq
	input.Filters = input.Filters.Clone()

	id := uuid.NewString()
	now := time.Now().UTC()
	record := ExportRecord{
		ID:          id,
		Resource:    res.Name(),
		Filters:     input.Filters,
		Sort:        input.Sort,
		Formats:     uniq,
		Status:      ExportStatusQueued,
		RequestedBy: input.RequestedBy,
		Reason:      input.Reason,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.mu.Lock()
	w.jobs[id] = &record
	snapshot := record.copy()
	w.mu.Unlock()
	w.record(ctx, id, input, ExportStatusQueued, nil)

	select {
	case w.queue <- exportTask{id: id, input: input}:
	default:
		w.mu.Lock()
		delete(w.jobs, id)
		w.mu.Unlock()
		return ExportRecord{}, ErrQueueFull
	}
	return snapshot, nil
}

// GetExport returns a snapshot of the export record.
func (w *Worker) GetExport(id string) (ExportRecord, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return ExportRecord{}, false
	}
	return record.copy(), true
}

func (w *Worker) process(task exportTask) {
	start := time.Now()
	var err error
	defer func() { metrics.Since(w.ctx, w.metrics, metrics.OpExportRun, start, err) }()

	w.update(task.id, func(r *ExportRecord) { r.Status = ExportStatusRunning })
	w.record(w.ctx, task.id, task.input, ExportStatusRunning, nil)

	var artifacts []ExportArtifact
	artifacts, err = w.run(task)
	if err != nil {
		w.logger.Warn("export failed", zap.String("export", task.id), zap.String("resource", task.input.Resource), zap.Error(err))
		now := time.Now().UTC()
		w.update(task.id, func(r *ExportRecord) {
			r.Status = ExportStatusFailed
			r.Error = err.Error()
			r.CompletedAt = &now
		})
		w.record(w.ctx, task.id, task.input, ExportStatusFailed, map[string]any{"error": err.Error()})
		return
	}
	now := time.Now().UTC()
	w.update(task.id, func(r *ExportRecord) {
		r.Status = ExportStatusSucceeded
		r.Error = ""
		r.Artifacts = artifacts
		r.CompletedAt = &now
	})
	w.record(w.ctx, task.id, task.input, ExportStatusSucceeded, map[string]any{"artifacts": len(artifacts)})
}

func (w *Worker) run(task exportTask) ([]ExportArtifact, error) {
	res, err := w.catalogs.Resource(task.input.Resource)
	if err != nil {
		return nil, err
	}
	page, err := res.Query(w.ctx, catalog.Query{Filters: task.input.Filters, Sort: task.input.Sort})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", task.input.Resource, err)
	}
	if page.Status != catalog.StatusReady {
		return nil, fmt.Errorf("query %s: catalog %s", task.input.Resource, page.Status)
	}

	out := make([]ExportArtifact, 0, len(task.input.Formats))
	for _, format := range task.input.Formats {
		rendered, err := materialize(format, res.Describe(), page)
		if err != nil {
			return nil, err
		}
		key := fmt.Sprintf("exports/%s.%s", task.id, format)
		info, err := w.store.Put(w.ctx, key, bytes.NewReader(rendered.Payload), blob.PutOptions{
			ContentType: rendered.Artifact.ContentType,
			Metadata: map[string]string{
				"export":   task.id,
				"resource": task.input.Resource,
				"rows":     strconv.Itoa(rendered.Artifact.Rows),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("store artifact %s: %w", key, err)
		}
		artifact := rendered.Artifact
		artifact.Key = info.Key
		artifact.ETag = info.ETag
		artifact.URL = info.URL
		if info.Size > 0 {
			artifact.SizeBytes = info.Size
		}
		if url, err := w.store.PresignURL(w.ctx, key, blob.SignedURLOptions{Method: "GET", Expiry: w.expiry}); err == nil {
			artifact.URL = url
		} else if !errors.Is(err, blob.ErrUnsupported) {
			return nil, fmt.Errorf("presign %s: %w", key, err)
		}
		out = append(out, artifact)
	}
	return out, nil
}

func (w *Worker) update(id string, mutate func(*ExportRecord)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if record, ok := w.jobs[id]; ok {
		mutate(record)
		record.UpdatedAt = time.Now().UTC()
	}
}

func (w *Worker) record(ctx context.Context, id string, input ExportInput, status ExportStatus, metadata map[string]any) {
	w.audit.Record(ctx, AuditEntry{
		ID:         uuid.NewString(),
		Export:     id,
		Action:     "catalog_export",
		Actor:      input.RequestedBy,
		Resource:   input.Resource,
		Status:     status,
		Reason:     input.Reason,
		Metadata:   metadata,
		OccurredAt: time.Now().UTC(),
	})
}

func materialize(format ExportFormat, desc catalog.Descriptor, page catalog.Page) (renderedArtifact, error) {
	header, rows := page.Table()
	var payload []byte
	switch format {
	case FormatJSON:
		var err error
		payload, err = json.Marshal(page)
		if err != nil {
			return renderedArtifact{}, fmt.Errorf("marshal json: %w", err)
		}
	case FormatCSV:
		buf := &bytes.Buffer{}
		if err := writeCSV(buf, header, rows); err != nil {
			return renderedArtifact{}, err
		}
		payload = buf.Bytes()
	case FormatHTML:
		payload = buildHTML(desc.Title, header, rows)
	default:
		return renderedArtifact{}, fmt.Errorf("unsupported export format %s", format)
	}
	return renderedArtifact{
		Artifact: ExportArtifact{
			Format:      format,
			ContentType: exportContentTypes[format],
			SizeBytes:   int64(len(payload)),
			Rows:        len(page.Items),
			CreatedAt:   time.Now().UTC(),
		},
		Payload: payload,
	}, nil
}

func writeCSV(dst interface{ Write([]byte) (int, error) }, header []string, rows [][]string) error {
	writer := csv.NewWriter(dst)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}

func buildHTML(title string, header []string, rows [][]string) []byte {
	buf := &strings.Builder{}
	buf.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>")
	buf.WriteString(html.EscapeString(title))
	buf.WriteString("</title></head><body><table>")
	buf.WriteString("<thead><tr>")
	for _, name := range header {
		buf.WriteString("<th>")
		buf.WriteString(html.EscapeString(name))
		buf.WriteString("</th>")
	}
	buf.WriteString("</tr></thead><tbody>")
	for _, row := range rows {
		buf.WriteString("<tr>")
		for _, cell := range row {
			buf.WriteString("<td>")
			buf.WriteString(html.EscapeString(cell))
			buf.WriteString("</td>")
		}
		buf.WriteString("</tr>")
	}
	buf.WriteString("</tbody></table></body></html>")
	return []byte(buf.String())
}

func (r ExportRecord) copy() ExportRecord {
	dup := r
	dup.Filters = r.Filters.Clone()
	dup.Formats = append([]ExportFormat(nil), r.Formats...)
	if len(r.Artifacts) > 0 {
		dup.Artifacts = append([]ExportArtifact(nil), r.Artifacts...)
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		dup.CompletedAt = &t
	}
	return dup
}
