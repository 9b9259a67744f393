package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"quizmaster/internal/app"
	"quizmaster/internal/domain"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxUploadBytes bounds backup, sheet and media uploads. Larger bodies get 413.
var maxUploadBytes int64 = 32 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// NewRouter wires the presenter socket and the backup endpoints.
func NewRouter(service *app.QuizService, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	api := &api{service: service, log: log}
	ws := NewWSHandler(service, log)

	r := chi.NewRouter()
	r.Use(recoveryMiddleware(log))
	r.Use(loggingMiddleware(log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", api.handleState)
		r.Get("/grid", api.handleGrid)
		r.Get("/theme.css", api.handleThemeCSS)
		r.Get("/export", api.handleExport)
		r.Post("/import", api.handleImport)
		r.Post("/reload", api.handleReload)
		r.Get("/questions", api.handleListQuestions)
		r.Post("/questions", api.handleAddQuestion)
		r.Put("/questions/{id}", api.handleEditQuestion)
		r.Delete("/questions/{id}", api.handleDeleteQuestion)
		r.Get("/questions.xlsx", api.handleExportSheet)
		r.Post("/questions.xlsx", api.handleImportSheet)
		r.Post("/questions/{id}/media", api.handleAttachMedia)
	})
	return r
}

type api struct {
	service *app.QuizService
	log     *zap.Logger
}

type errorPayload struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorPayload{Message: err.Error()})
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	var bad badRequestError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrQuestionNotFound), errors.Is(err, domain.ErrTeamNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrIDTaken), errors.Is(err, domain.ErrQuestionVisited):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidSnapshot), errors.Is(err, domain.ErrUnsupportedMedia),
		errors.Is(err, domain.ErrNoActiveTeam), errors.Is(err, domain.ErrNoActiveQuestion):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (a *api) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.service.PresenterState())
}

func (a *api) handleGrid(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.service.Grid())
}

func (a *api) handleThemeCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	io.WriteString(w, a.service.Theme().CSS())
}

func (a *api) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := a.service.ExportJSON()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.service.BackupFileName()))
	w.Write(data)
}

func (a *api) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := a.service.Import(r.Context(), data); err != nil {
		a.log.Info("backup import rejected", zap.Error(err))
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleExportSheet(w http.ResponseWriter, r *http.Request) {
	data, err := a.service.ExportSheet()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="questions.xlsx"`)
	w.Write(data)
}

func (a *api) handleImportSheet(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	added, err := a.service.ImportSheet(r.Context(), bytes.NewReader(data))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, added)
}

func (a *api) handleAttachMedia(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid question id"})
		return
	}
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	q, err := a.service.AttachMedia(r.Context(), id, domain.MediaType(r.URL.Query().Get("type")), data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type badRequestError string

func (e badRequestError) Error() string { return string(e) }

// readBody reads an upload, failing with *http.MaxBytesError past maxUploadBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	var tooLarge *http.MaxBytesError
	if err != nil && !errors.As(err, &tooLarge) {
		return nil, badRequestError("unreadable body")
	}
	return data, err
}

func (a *api) handleReload(w http.ResponseWriter, r *http.Request) {
	a.service.Reload(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.service.Questions.All())
}

type addQuestionRequest struct {
	domain.QuestionDraft
	ID *int `json:"id,omitempty"`
}

func (a *api) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	var req addQuestionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid question"})
		return
	}
	q, err := a.service.AddQuestion(r.Context(), req.QuestionDraft, req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (a *api) handleEditQuestion(w http.ResponseWriter, r *http.Request) {
	oldID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid question id"})
		return
	}
	var q domain.Question
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&q); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid question"})
		return
	}
	if err := a.service.EditQuestion(r.Context(), oldID, q); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (a *api) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid question id"})
		return
	}
	if err := a.service.DeleteQuestion(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func loggingMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

func recoveryMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic recovered", zap.Any("panic", rec), zap.String("path", r.URL.Path))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
