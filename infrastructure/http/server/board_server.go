package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"message-board/attachments"
	"message-board/auth"
	"message-board/domain"
	"message-board/errors"
	"message-board/observability"
	"message-board/services"
	"message-board/storage"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
)

const (
	uploadsPrefix = "/uploads"
	// Form fields other than the files themselves stay in memory up to this size.
	multipartMemory = 8 << 20
)

type BoardServer struct {
	boardService   services.IBoardService
	adminService   services.IAdminService
	tokenizer      auth.Tokenizer
	resolver       attachments.Resolver
	maxUploadBytes int64
	log            *slog.Logger
}

func NewBoardServer(log *slog.Logger, boardService services.IBoardService, adminService services.IAdminService,
	tokenizer auth.Tokenizer, resolver attachments.Resolver, maxUploadBytes int64) *BoardServer {
	return &BoardServer{
		boardService:   boardService,
		adminService:   adminService,
		tokenizer:      tokenizer,
		resolver:       resolver,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// Router mounts the public board, the admin routes guarded by a bearer token,
// the attachment files and the Prometheus endpoint.
func (s *BoardServer) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(observability.HTTPMetrics)

	router.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Get("/messages", s.listMessages)
	router.Post("/messages", s.postMessage)
	router.Post("/admin/login", s.login)

	router.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(s.tokenizer, auth.RoleAdmin))
		r.Delete("/messages/{id}", s.deleteMessage)
		r.Post("/admin/gc", s.collectOrphans)
	})

	router.Get(uploadsPrefix+"/*", s.serveUpload)
	return router
}

type filesResponse struct {
	Image *string `json:"image"`
	Video *string `json:"video"`
	Audio *string `json:"audio"`
}

type messageResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Message   string        `json:"message"`
	Timestamp string        `json:"timestamp"`
	Files     filesResponse `json:"files"`
}

// toMessageResponse exposes attachments as URLs under the uploads route instead of filesystem paths.
func toMessageResponse(record domain.MessageRecord) messageResponse {
	urls := record.Attachments.Map(func(kind domain.Kind, filename string) string {
		return path.Join(uploadsPrefix, kind.Dir(), attachments.StoredName(filename))
	})
	return messageResponse{
		ID:        record.ID,
		Name:      record.Name,
		Message:   record.Message,
		Timestamp: record.Timestamp,
		Files:     filesResponse{Image: urls.Image, Video: urls.Video, Audio: urls.Audio},
	}
}

func (s *BoardServer) listMessages(w http.ResponseWriter, _ *http.Request) {
	records, err := s.boardService.List()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(records, func(item domain.MessageRecord, _ int) messageResponse {
		return toMessageResponse(item)
	}))
}

// postMessage reads a multipart form with the fields name and message
// and an optional file per attachment kind (image, video, audio).
func (s *BoardServer) postMessage(w http.ResponseWriter, r *http.Request) {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		s.writeError(w, fmt.Errorf("%w: %v", errors.ErrInvalidRecord, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	cmd := domain.PostMessageCommand{
		Name:    r.FormValue("name"),
		Message: r.FormValue("message"),
	}
	for field := range r.MultipartForm.File {
		kind, err := domain.ParseKind(field)
		if err != nil {
			s.writeError(w, err)
			return
		}
		upload, err := readUpload(r, kind)
		if err != nil {
			s.writeError(w, err)
			return
		}
		cmd.Uploads = append(cmd.Uploads, upload)
	}

	record, err := s.boardService.Post(r.Context(), cmd)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMessageResponse(record))
}

func readUpload(r *http.Request, kind domain.Kind) (domain.Upload, error) {
	file, header, err := r.FormFile(string(kind))
	if err != nil {
		return domain.Upload{}, fmt.Errorf("%w: %v", errors.ErrInvalidRecord, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("%w: %v", errors.ErrInvalidRecord, err)
	}
	return domain.Upload{Kind: kind, Filename: header.Filename, Data: data}, nil
}

func (s *BoardServer) deleteMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		s.writeError(w, errors.ErrInvalidRecord)
		return
	}
	if err := s.boardService.Delete(id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *BoardServer) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errors.ErrInvalidCredentials, err))
		return
	}
	token, err := s.adminService.Login(req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token.String()})
}

func (s *BoardServer) collectOrphans(w http.ResponseWriter, r *http.Request) {
	result, err := s.boardService.CollectOrphans(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// serveUpload serves files from the kind directories only; temporary files stay hidden.
func (s *BoardServer) serveUpload(w http.ResponseWriter, r *http.Request) {
	rest := chi.URLParam(r, "*")
	dir, name, ok := strings.Cut(rest, "/")
	if !ok || strings.Contains(name, "/") || name == "" || storage.IsTemporary(name) {
		http.NotFound(w, r)
		return
	}
	kind, err := domain.ParseKind(strings.TrimSuffix(dir, "s"))
	if err != nil || kind.Dir() != dir {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, s.resolver.ToLoadForm(kind, name))
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *BoardServer) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", "status", status, "error", err)
	} else {
		s.log.Debug("Request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
