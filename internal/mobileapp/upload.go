package mobileapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"bsprep/internal/failure"
	"bsprep/pkg/logging"

	"github.com/hashicorp/go-retryablehttp"
)

const subsystem = "AppUpload"

// UploaderConfig configures an Uploader.
type UploaderConfig struct {
	Endpoint string
	Username string
	Key      string
	// Retries is the number of additional attempts after a failed upload.
	Retries int
	// Timeout bounds a single attempt. Zero means no timeout.
	Timeout time.Duration
}

// UploadResponse is the vendor's answer to a successful upload.
type UploadResponse struct {
	AppURL      string `json:"app_url"`
	CustomID    string `json:"custom_id,omitempty"`
	ShareableID string `json:"shareable_id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Uploader sends app packages to the vendor's upload endpoint.
type Uploader struct {
	client *retryablehttp.Client
	cfg    UploaderConfig
}

// NewUploader creates an Uploader.
func NewUploader(cfg UploaderConfig) *Uploader {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.Retries
	client.Logger = logging.NewLeveledLogger(subsystem)
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}
	return &Uploader{client: client, cfg: cfg}
}

// Upload posts the local file named by app.App. The file must exist; it is
// checked before any request is made. Every failure is severe.
func (u *Uploader) Upload(ctx context.Context, app Resolved) (*UploadResponse, error) {
	info, err := os.Stat(app.App)
	if err != nil || info.IsDir() {
		return nil, failure.Severe(fmt.Sprintf("app upload failed for %s", app.App), failure.ErrAppNotFound)
	}

	boundary := multipart.NewWriter(io.Discard).Boundary()
	body := func() (io.Reader, error) {
		return multipartBody(app, boundary)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, u.cfg.Endpoint, retryablehttp.ReaderFunc(body))
	if err != nil {
		return nil, failure.Severe("app upload failed", err)
	}
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	req.SetBasicAuth(u.cfg.Username, u.cfg.Key)

	logging.Info(subsystem, "Uploading app %s (%d bytes)", app, info.Size())
	resp, err := u.client.Do(req)
	if err != nil {
		return nil, failure.Severe("app upload failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failure.Severe("app upload failed", fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr errorResponse
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Error != "" {
			return nil, failure.Severe("app upload failed", fmt.Errorf("%s: %s", resp.Status, apiErr.Error))
		}
		return nil, failure.Severe("app upload failed", fmt.Errorf("unexpected status %s", resp.Status))
	}

	var out UploadResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, failure.Severe("app upload failed", fmt.Errorf("decoding response: %w", err))
	}
	logging.Debug(subsystem, "Upload response: app_url=%s custom_id=%s shareable_id=%s", out.AppURL, out.CustomID, out.ShareableID)
	return &out, nil
}

// multipartBody streams the form through a pipe so the package is never held
// in memory. A fresh reader is produced for every attempt.
func multipartBody(app Resolved, boundary string) (io.Reader, error) {
	f, err := os.Open(app.App)
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	if err := mw.SetBoundary(boundary); err != nil {
		f.Close()
		return nil, err
	}

	go func() {
		defer f.Close()
		err := writeForm(mw, f, app)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	return pr, nil
}

func writeForm(mw *multipart.Writer, f *os.File, app Resolved) error {
	part, err := mw.CreateFormFile("file", filepath.Base(app.App))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	if app.CustomID != "" {
		if err := mw.WriteField("custom_id", app.CustomID); err != nil {
			return err
		}
	}
	return nil
}
