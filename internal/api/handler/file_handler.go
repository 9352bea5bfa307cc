package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fpa-intel/fpa-api/internal/api/metrics"
	"github.com/fpa-intel/fpa-api/internal/core/domain"
	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

type uploadResponse struct {
	FileID      string `json:"file_id"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	Message     string `json:"message"`
}

// FileHandler serves upload, listing, download and deletion of files.
type FileHandler struct {
	service ports.FileService
}

func NewFileHandler(service ports.FileService) *FileHandler {
	return &FileHandler{service: service}
}

// Upload handles POST /files/upload.
//
// @Summary      Upload a file
// @Tags         files
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        file         formData  file    true   "File content"
// @Param        analysis_id  formData  string  false  "Analysis to attach the file to"
// @Success      200          {object}  uploadResponse
// @Failure      400          {object}  errorResponse
// @Failure      404          {object}  errorResponse
// @Router       /files/upload [post]
func (h *FileHandler) Upload(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return domain.NewValidationError("file", "is required")
	}
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	record, err := h.service.Upload(c.Request().Context(), ports.UploadInput{
		Content:     data,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		UserID:      user.ID,
		AnalysisID:  c.FormValue("analysis_id"),
	})
	if err != nil {
		metrics.FileUploadsTotal.WithLabelValues(uploadFailure(err)).Inc()
		return err
	}

	metrics.FileUploadsTotal.WithLabelValues("success").Inc()
	metrics.FileUploadBytes.Observe(float64(record.Size))
	return c.JSON(http.StatusOK, uploadResponse{
		FileID:      record.ID,
		Filename:    record.Filename,
		Size:        record.Size,
		ContentType: record.ContentType,
		Message:     "File uploaded successfully",
	})
}

// List handles GET /files.
//
// @Summary      List files
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        analysis_id  query     string  false  "Analysis filter"
// @Success      200          {array}   domain.FileRecord
// @Router       /files [get]
func (h *FileHandler) List(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	files, err := h.service.List(c.Request().Context(), user.ID, c.QueryParam("analysis_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, files)
}

// Download handles GET /files/:id.
//
// @Summary      Download a file
// @Tags         files
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id   path      string  true  "File id"
// @Success      200  {file}    binary
// @Failure      404  {object}  errorResponse
// @Router       /files/{id} [get]
func (h *FileHandler) Download(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	content, err := h.service.Content(c.Request().Context(), c.Param("id"), user.ID)
	if err != nil {
		return err
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": content.Filename})
	if disposition != "" {
		c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
	}
	contentType := content.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Blob(http.StatusOK, contentType, content.Data)
}

// Info handles GET /files/:id/info.
//
// @Summary      File metadata
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "File id"
// @Success      200  {object}  domain.FileRecord
// @Failure      404  {object}  errorResponse
// @Router       /files/{id}/info [get]
func (h *FileHandler) Info(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	record, err := h.service.Get(c.Request().Context(), c.Param("id"), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, record)
}

// Delete handles DELETE /files/:id.
//
// @Summary      Delete a file
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "File id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /files/{id} [delete]
func (h *FileHandler) Delete(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), c.Param("id"), user.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "File deleted successfully"})
}

func uploadFailure(err error) string {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrFileTypeNotAllowed),
		errors.Is(err, domain.ErrFileTooLarge),
		errors.Is(err, domain.ErrAnalysisNotFound),
		errors.As(err, &verr):
		return "rejected"
	}
	return "error"
}
