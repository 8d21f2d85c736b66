// Package media uploads menu photos to Cloudinary with an unsigned preset.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	ErrNotConfigured = errors.New("cloudinary cloud name and upload preset are required")
	ErrRejected      = errors.New("cloudinary rejected the upload")
)

const defaultBaseURL = "https://api.cloudinary.com"

type Config struct {
	CloudName    string
	UploadPreset string
	// Folder is optional.
	Folder  string
	BaseURL string
	Timeout time.Duration
}

type Cloudinary struct {
	cfg      Config
	http     *http.Client
	backOff  func() backoff.BackOff
	maxTries uint
	log      *slog.Logger
}

func NewCloudinary(cfg Config, log *slog.Logger) (*Cloudinary, error) {
	if strings.TrimSpace(cfg.CloudName) == "" || strings.TrimSpace(cfg.UploadPreset) == "" {
		return nil, ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Cloudinary{
		cfg: cfg,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		backOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			return b
		},
		maxTries: 3,
		log:      logger.OrDiscard(log),
	}, nil
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Upload posts the file and returns its secure_url.
func (c *Cloudinary) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	body, contentType, err := c.form(filename, data)
	if err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.CloudName)

	out, err := backoff.Retry(ctx, func() (uploadResponse, error) {
		var out uploadResponse
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return out, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := c.http.Do(req)
		if err != nil {
			return out, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return out, err
		}
		_ = json.Unmarshal(raw, &out)

		switch {
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return out, fmt.Errorf("cloudinary status %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			msg := http.StatusText(resp.StatusCode)
			if out.Error != nil && out.Error.Message != "" {
				msg = out.Error.Message
			}
			return out, backoff.Permanent(fmt.Errorf("%w: %s", ErrRejected, msg))
		}
		if out.SecureURL == "" {
			return out, backoff.Permanent(fmt.Errorf("%w: response has no secure_url", ErrRejected))
		}
		return out, nil
	}, backoff.WithBackOff(c.backOff()), backoff.WithMaxTries(c.maxTries))
	if err != nil {
		return "", err
	}

	c.log.Info("photo uploaded", slog.String("public_id", out.PublicID), slog.Int("bytes", len(data)))
	return out.SecureURL, nil
}

func (c *Cloudinary) form(filename string, data []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("build upload form: %w", err)
	}
	if err := w.WriteField("upload_preset", c.cfg.UploadPreset); err != nil {
		return nil, "", fmt.Errorf("build upload form: %w", err)
	}
	if c.cfg.Folder != "" {
		if err := w.WriteField("folder", c.cfg.Folder); err != nil {
			return nil, "", fmt.Errorf("build upload form: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("build upload form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
