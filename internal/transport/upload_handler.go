package transport

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"catalog/internal/config"
	"catalog/internal/middleware"
	"catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	// multipartMemory is how much of a form is held in memory before
	// spilling to temporary files.
	multipartMemory = 32 << 20

	formOverhead = 1 << 20
)

// UploadHandler handles image uploads to the media provider
type UploadHandler struct {
	uploadService service.UploadService
	cfg           config.UploadConfig
	logger        *zap.Logger
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(uploadService service.UploadService, cfg config.UploadConfig, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		cfg:           cfg,
		logger:        logger,
	}
}

// RegisterRoutes registers the upload routes behind the given middlewares.
func (h *UploadHandler) RegisterRoutes(r chi.Router, middlewares ...func(http.Handler) http.Handler) {
	r.Route("/upload", func(r chi.Router) {
		r.Use(middlewares...)
		r.Post("/image", h.UploadImage)
		r.Post("/images", h.UploadImages)
		r.Delete("/image", h.DeleteImage)
	})
}

// UploadImage handles a single image sent in the "file" form field
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r, 1) {
		return
	}

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "file is required")
		return
	}

	file, err := openFile(headers[0])
	if err != nil {
		h.logger.Debug("Failed to open uploaded file", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid file")
		return
	}
	defer closeFile(file)

	url, err := h.uploadService.UploadImage(r.Context(), file)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Image uploaded", zap.String("file_name", file.FileName))
	middleware.RespondWithJSON(w, http.StatusCreated, UploadImageResponse{
		Success:  true,
		ImageURL: url,
		Message:  "image uploaded successfully",
	})
}

// UploadImages handles a batch of images sent in the "files" form field
func (h *UploadHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r, h.cfg.MaxFiles) {
		return
	}

	headers := r.MultipartForm.File["files"]
	files := make([]service.FileInput, 0, len(headers))
	defer func() {
		for _, f := range files {
			closeFile(f)
		}
	}()

	for _, header := range headers {
		file, err := openFile(header)
		if err != nil {
			h.logger.Debug("Failed to open uploaded file", zap.Error(err))
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid file")
			return
		}
		files = append(files, file)
	}

	urls, err := h.uploadService.UploadMultipleImages(r.Context(), files)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Images uploaded", zap.Int("count", len(urls)))
	middleware.RespondWithJSON(w, http.StatusCreated, UploadImagesResponse{
		Success:   true,
		ImageURLs: urls,
		Count:     len(urls),
		Message:   "images uploaded successfully",
	})
}

// DeleteImage handles removal of an uploaded image by its public id
func (h *UploadHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	publicID := r.URL.Query().Get("public_id")
	if err := h.uploadService.DeleteImage(r.Context(), publicID); err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Image deleted", zap.String("public_id", publicID))
	w.WriteHeader(http.StatusNoContent)
}

// parseForm caps the body at files*MaxFileBytes plus form overhead and
// parses it. It answers the request itself when parsing fails.
func (h *UploadHandler) parseForm(w http.ResponseWriter, r *http.Request, files int) bool {
	limit := int64(files)*h.cfg.MaxFileBytes + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.logger.Debug("Failed to parse multipart form", zap.Error(err))

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.RespondWithError(w, http.StatusBadRequest,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return false
	}
	return true
}

func openFile(header *multipart.FileHeader) (service.FileInput, error) {
	f, err := header.Open()
	if err != nil {
		return service.FileInput{}, err
	}
	return service.FileInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        f,
	}, nil
}

func closeFile(file service.FileInput) {
	if c, ok := file.Data.(multipart.File); ok {
		_ = c.Close()
	}
}
