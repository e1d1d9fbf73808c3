package uploads

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olimpofit/gym-server/internal/pkg/httputil"
)

// maxUploadBytes caps multipart uploads at 10 MiB, enough for photos
// and scanned receipts.
const maxUploadBytes = 10 << 20

// Handlers provides HTTP handlers for the uploads API
type Handlers struct {
	service *Service
}

// NewHandlers creates new upload handlers
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// Routes mounts the upload endpoints on r
func (h *Handlers) Routes(r chi.Router) {
	r.Post("/", h.HandleUpload)
	r.Get("/{key}", h.HandleDownload)
	r.Delete("/{key}", h.HandleDelete)
}

// HandleUpload stores the multipart "file" field in S3
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.BadRequest(w, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	stored, err := h.service.Put(r.Context(), header.Filename,
		header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Created(w, stored)
}

// HandleDownload streams an object back to the client
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	body, contentType, err := h.service.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}

// HandleDelete removes an object
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.NoContent(w)
}
