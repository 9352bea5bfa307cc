package handler

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

type stubFileService struct {
	ports.FileService
	uploadFn  func(in ports.UploadInput) (*domain.FileRecord, error)
	contentFn func(id, userID string) (*ports.FileContent, error)
}

func (s *stubFileService) Upload(_ context.Context, in ports.UploadInput) (*domain.FileRecord, error) {
	return s.uploadFn(in)
}

func (s *stubFileService) Content(_ context.Context, id, userID string) (*ports.FileContent, error) {
	return s.contentFn(id, userID)
}

// multipartContext builds an upload request. An empty filename omits the
// file part.
func multipartContext(t *testing.T, filename, contentType string, data []byte, analysisID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if analysisID != "" {
		if err := w.WriteField("analysis_id", analysisID); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/upload", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	return asCaller(e.NewContext(req, rec), testCaller), rec
}

func TestFileHandler_Upload(t *testing.T) {
	stub := &stubFileService{
		uploadFn: func(in ports.UploadInput) (*domain.FileRecord, error) {
			if in.Filename != "q1.csv" || in.ContentType != "text/csv" || string(in.Content) != "a,b\n1,2\n" {
				t.Fatalf("unexpected upload: %+v", in)
			}
			if in.UserID != testCaller.ID || in.AnalysisID != "a1" {
				t.Fatalf("unexpected owner: %s %s", in.UserID, in.AnalysisID)
			}
			return &domain.FileRecord{ID: "f1", Filename: in.Filename, ContentType: in.ContentType, Size: int64(len(in.Content))}, nil
		},
	}
	handler := NewFileHandler(stub)

	c, rec := multipartContext(t, "q1.csv", "text/csv", []byte("a,b\n1,2\n"), "a1")
	if err := handler.Upload(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeBody(t, rec)
	if resp["file_id"] != "f1" || resp["size"] != float64(8) || resp["message"] != "File uploaded successfully" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestFileHandler_Upload_MissingFile(t *testing.T) {
	handler := NewFileHandler(&stubFileService{})

	c, _ := multipartContext(t, "", "", nil, "a1")
	requireFields(t, handler.Upload(c), "file")
}

func TestFileHandler_Upload_Rejected(t *testing.T) {
	stub := &stubFileService{
		uploadFn: func(in ports.UploadInput) (*domain.FileRecord, error) {
			return nil, domain.ErrFileTypeNotAllowed
		},
	}
	handler := NewFileHandler(stub)

	c, _ := multipartContext(t, "run.exe", "application/x-msdownload", []byte("MZ"), "")
	if err := handler.Upload(c); !errors.Is(err, domain.ErrFileTypeNotAllowed) {
		t.Fatalf("expected ErrFileTypeNotAllowed, got %v", err)
	}
	if got := uploadFailure(domain.ErrFileTypeNotAllowed); got != "rejected" {
		t.Fatalf("expected rejected label, got %q", got)
	}
	if got := uploadFailure(errors.New("disk full")); got != "error" {
		t.Fatalf("expected error label, got %q", got)
	}
}

func TestFileHandler_Download(t *testing.T) {
	stub := &stubFileService{
		contentFn: func(id, userID string) (*ports.FileContent, error) {
			if id != "f1" || userID != testCaller.ID {
				t.Fatalf("unexpected args: %s %s", id, userID)
			}
			return &ports.FileContent{Data: []byte("%PDF-1.4"), Filename: "Q1 report.pdf", ContentType: "application/pdf"}, nil
		},
	}
	handler := NewFileHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/api/v1/files/f1", "")
	c.SetParamNames("id")
	c.SetParamValues("f1")
	if err := handler.Download(asCaller(c, testCaller)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Body.String() != "%PDF-1.4" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); cd != `attachment; filename="Q1 report.pdf"` {
		t.Fatalf("unexpected disposition %q", cd)
	}
}
