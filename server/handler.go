// Package server exposes the dialogue engine and the document service over
// HTTP.
package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tbxark/formpilot/agent"
	"github.com/tbxark/formpilot/docs"
	"github.com/tbxark/formpilot/patch"
	"github.com/tbxark/formpilot/types"
)

const DefaultMaxUploadSize = 25 << 20

type Info struct {
	Model                string
	DocumentsConfigured  bool
	CompletionConfigured bool
}

type Handler struct {
	engine        *agent.Engine
	docs          docs.Service
	info          Info
	maxUploadSize int64
}

func NewHandler(engine *agent.Engine, documents docs.Service, info Info, maxUploadSize int64) *Handler {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &Handler{
		engine:        engine,
		docs:          documents,
		info:          info,
		maxUploadSize: maxUploadSize,
	}
}

// NewRouter wires the global middleware and all API routes.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(allowedOrigins))
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers the API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Post("/upload-pdf", h.UploadPDF)
		r.Post("/extract-fields", h.ExtractFields)
		r.Post("/chat", h.Chat)
		r.Get("/session/{id}", h.GetSession)
		r.Patch("/session/{id}/values", h.PatchValues)
		r.Delete("/session/{id}", h.DeleteSession)
		r.Post("/update-field", h.UpdateField)
		r.Post("/update-session", h.UpdateSession)
		r.Post("/fill-pdf", h.FillPDF)
	})
}

type healthResponse struct {
	Status            string          `json:"status"`
	Message           string          `json:"message"`
	Timestamp         time.Time       `json:"timestamp"`
	Model             string          `json:"model"`
	APIKeysConfigured map[string]bool `json:"apiKeysConfigured"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, healthResponse{
		Status:    "online",
		Message:   "formpilot server is running",
		Timestamp: time.Now().UTC(),
		Model:     h.info.Model,
		APIKeysConfigured: map[string]bool{
			"pdf_co":     h.info.DocumentsConfigured,
			"completion": h.info.CompletionConfigured,
		},
	})
}

type uploadResponse struct {
	Success bool `json:"success"`
	*docs.Upload
}

func (h *Handler) UploadPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		Error(w, http.StatusBadRequest, "No file provided")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		Error(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()
	if header.Size > h.maxUploadSize {
		Error(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		Error(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	slog.Info("processing upload", "file", header.Filename, "size", len(data))
	up, err := h.docs.Upload(r.Context(), data, header.Filename)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, uploadResponse{Success: true, Upload: up})
}

type extractRequest struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

type extractResponse struct {
	Success     bool          `json:"success"`
	Fields      []types.Field `json:"fields"`
	TotalFields int           `json:"totalFields"`
	FieldNames  []string      `json:"fieldNames"`
	Prompt      string        `json:"prompt"`
}

func (h *Handler) ExtractFields(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.URL == "" || req.SessionID == "" {
		Error(w, http.StatusBadRequest, "url and sessionId are required")
		return
	}
	fields, err := h.docs.ExtractFields(r.Context(), req.URL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	prompt, err := h.engine.CreateSession(r.Context(), req.SessionID, req.URL, fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	slog.Info("session created from document", "session_id", req.SessionID, "fields", len(fields))
	JSON(w, http.StatusOK, extractResponse{
		Success:     true,
		Fields:      fields,
		TotalFields: len(fields),
		FieldNames:  names,
		Prompt:      prompt,
	})
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	SessionID    string            `json:"sessionId"`
	Message      string            `json:"message"`
	Messages     []chatMessage     `json:"messages"`
	ClientCursor *int              `json:"clientCursor"`
	ClientValues map[string]string `json:"clientValues"`
	// Older clients send the cursor and values under these names.
	CurrentFieldIndex *int              `json:"currentFieldIndex"`
	CollectedData     map[string]string `json:"collectedData"`
}

func (c *chatRequest) text() string {
	if c.Message != "" {
		return c.Message
	}
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == "user" {
			return c.Messages[i].Content
		}
	}
	return ""
}

func (c *chatRequest) hints() agent.ClientHints {
	hints := agent.ClientHints{Cursor: c.ClientCursor, Values: c.ClientValues}
	if hints.Cursor == nil {
		hints.Cursor = c.CurrentFieldIndex
	}
	if hints.Values == nil {
		hints.Values = c.CollectedData
	}
	return hints
}

type chatResponse struct {
	Success bool `json:"success"`
	*agent.Response
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SessionID == "" {
		Error(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	resp, err := h.engine.HandleMessage(r.Context(), req.SessionID, req.text(), req.hints())
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, chatResponse{Success: true, Response: resp})
}

type sessionResponse struct {
	Success bool `json:"success"`
	*agent.Status
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	st, err := h.engine.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, sessionResponse{Success: true, Status: st})
}

type valuesResponse struct {
	Success bool              `json:"success"`
	Values  map[string]string `json:"collectedValues"`
}

func (h *Handler) PatchValues(w http.ResponseWriter, r *http.Request) {
	var ops []patch.Operation
	if err := decodeJSON(r, &ops); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	values, err := h.engine.UpdateValues(r.Context(), chi.URLParam(r, "id"), ops)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, valuesResponse{Success: true, Values: values})
}

type updateFieldRequest struct {
	SessionID string `json:"sessionId"`
	FieldName string `json:"fieldName"`
	Value     string `json:"value"`
}

func (h *Handler) UpdateField(w http.ResponseWriter, r *http.Request) {
	var req updateFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	ops := []patch.Operation{{Op: patch.OperationReplace, Path: patch.FieldPath(req.FieldName), Value: req.Value}}
	values, err := h.engine.UpdateValues(r.Context(), req.SessionID, ops)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, valuesResponse{Success: true, Values: values})
}

type updateSessionRequest struct {
	SessionID string        `json:"sessionId"`
	Fields    []docs.Record `json:"fields"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var req updateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SessionID == "" {
		Error(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	fields := docs.NormalizeFields(req.Fields)
	if err := h.engine.ReplaceFields(r.Context(), req.SessionID, fields); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("session fields replaced", "session_id", req.SessionID, "fields", len(fields))
	JSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.EndSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, successResponse{Success: true})
}

type fillRequest struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

type fillResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

func (h *Handler) FillPDF(w http.ResponseWriter, r *http.Request) {
	var req fillRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	values, err := h.engine.Values(r.Context(), req.SessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	url := strings.TrimSpace(req.URL)
	if url == "" {
		s, err := h.engine.Session(r.Context(), req.SessionID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		url = s.DocumentURL
	}
	if url == "" {
		Error(w, http.StatusBadRequest, "url is required")
		return
	}
	slog.Info("filling document", "session_id", req.SessionID, "values", len(values))
	filled, err := h.docs.Fill(r.Context(), url, values)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, fillResponse{Success: true, URL: filled.URL, Message: "PDF erfolgreich ausgefüllt!"})
}
