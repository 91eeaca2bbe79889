// Package rest exposes the todo service over an HTTP JSON surface.
package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/ktanaka/todo/internal/platform/errors"
	"github.com/ktanaka/todo/internal/session"
	"github.com/ktanaka/todo/internal/todo/service"
	"github.com/ktanaka/todo/internal/todo/storage"
)

var tracer = otel.Tracer("github.com/ktanaka/todo/internal/todo/api/rest")

// Handler serves the todo HTTP JSON endpoints.
type Handler struct {
	service  *service.Service
	sessions session.Verifier
}

// New creates a handler for the given service and session verifier.
func New(svc *service.Service, sessions session.Verifier) *Handler {
	return &Handler{service: svc, sessions: sessions}
}

// Register mounts the todo routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /todos", h.handleList)
	mux.HandleFunc("POST /todos", h.handleCreate)
	mux.HandleFunc("PATCH /todos/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /todos/{id}", h.handleDelete)
}

type itemResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type createRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// updateRequest distinguishes an absent description from an explicit null so
// a null (or empty) description clears the column while an omitted one keeps
// the stored value.
type updateRequest struct {
	Title       *string         `json:"title"`
	Description json.RawMessage `json:"description"`
	Completed   *bool           `json:"completed"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "todo.list")
	defer span.End()

	uid, err := h.sessions.Principal(r)
	if err != nil {
		writeError(w, span, err)
		return
	}
	span.SetAttributes(attribute.String("todo.owner_id", uid))

	items, err := h.service.List(ctx, uid)
	if err != nil {
		writeError(w, span, err)
		return
	}
	payload := make([]itemResponse, 0, len(items))
	for _, item := range items {
		payload = append(payload, toItemResponse(item))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "todo.create")
	defer span.End()

	uid, err := h.sessions.Principal(r)
	if err != nil {
		writeError(w, span, err)
		return
	}
	span.SetAttributes(attribute.String("todo.owner_id", uid))

	var payload createRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, span, apperrors.New(apperrors.CodeInvalidArgument, "invalid request body"))
		return
	}

	item, err := h.service.Create(ctx, uid, service.CreateParams{
		Title:       payload.Title,
		Description: payload.Description,
	})
	if err != nil {
		writeError(w, span, err)
		return
	}
	span.SetAttributes(attribute.String("todo.id", item.ID))
	writeJSON(w, http.StatusCreated, toItemResponse(item))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "todo.update")
	defer span.End()

	uid, err := h.sessions.Principal(r)
	if err != nil {
		writeError(w, span, err)
		return
	}
	itemID := r.PathValue("id")
	span.SetAttributes(
		attribute.String("todo.owner_id", uid),
		attribute.String("todo.id", itemID),
	)

	var payload updateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, span, apperrors.New(apperrors.CodeInvalidArgument, "invalid request body"))
		return
	}
	params := service.UpdateParams{
		Title:     payload.Title,
		Completed: payload.Completed,
	}
	if len(payload.Description) > 0 {
		params.DescriptionSet = true
		if string(payload.Description) != "null" {
			var description string
			if err := json.Unmarshal(payload.Description, &description); err != nil {
				writeError(w, span, apperrors.New(apperrors.CodeInvalidArgument, "invalid request body"))
				return
			}
			params.Description = &description
		}
	}

	item, err := h.service.Update(ctx, uid, itemID, params)
	if err != nil {
		writeError(w, span, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "todo.delete")
	defer span.End()

	uid, err := h.sessions.Principal(r)
	if err != nil {
		writeError(w, span, err)
		return
	}
	itemID := r.PathValue("id")
	span.SetAttributes(
		attribute.String("todo.owner_id", uid),
		attribute.String("todo.id", itemID),
	)

	if err := h.service.Delete(ctx, uid, itemID); err != nil {
		writeError(w, span, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "todo deleted"})
}

func toItemResponse(item storage.Item) itemResponse {
	return itemResponse{
		ID:          item.ID,
		UserID:      item.OwnerID,
		Title:       item.Title,
		Description: item.Description,
		Completed:   item.Completed,
		CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps a domain error to an HTTP status and JSON error body. The
// error text is surfaced to the caller verbatim; nothing is retried or logged
// past this boundary.
func writeError(w http.ResponseWriter, span trace.Span, err error) {
	status := http.StatusInternalServerError
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		status = domainErr.Code.HTTPStatus()
	}
	if status >= http.StatusInternalServerError {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
