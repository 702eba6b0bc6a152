// Package atsclient is a Go client for the candidate API. It applies the same
// per-call timeouts, client-side checks and user-facing error messages as the
// recruiter web app.
package atsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"go-ats-backend/internal/domain"
	"go-ats-backend/pkg/apperror"
)

const (
	DefaultBaseURL       = "http://localhost:3010/api"
	DefaultCreateTimeout = 30 * time.Second
	DefaultReadTimeout   = 10 * time.Second
)

type Client struct {
	baseURL       string
	httpClient    *http.Client
	createTimeout time.Duration
	readTimeout   time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeouts(create, read time.Duration) Option {
	return func(c *Client) {
		c.createTimeout = create
		c.readTimeout = read
	}
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    http.DefaultClient,
		createTimeout: DefaultCreateTimeout,
		readTimeout:   DefaultReadTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CVFile is the résumé attached to a new candidate.
type CVFile struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// ErrInvalidDraft wraps client-side validation failures.
var ErrInvalidDraft = errors.New("atsclient: draft failed validation")

// DraftError lists the fields that failed Draft.Validate.
type DraftError struct {
	Errors []apperror.FieldError
}

func (e *DraftError) Error() string {
	return fmt.Sprintf("%s: %d field(s)", ErrInvalidDraft, len(e.Errors))
}

func (e *DraftError) Unwrap() error { return ErrInvalidDraft }

// envelope mirrors the server response shape.
type envelope struct {
	Success   bool                  `json:"success"`
	Message   string                `json:"message"`
	Data      json.RawMessage       `json:"data"`
	Errors    []apperror.FieldError `json:"errors"`
	RequestID string                `json:"request_id"`
}

// CreateCandidate validates the draft and submits it as multipart form data,
// with the CV when given.
func (c *Client) CreateCandidate(ctx context.Context, d Draft, cv *CVFile) (*domain.Candidate, error) {
	d = d.withDefaults()
	if errs := d.Validate(); len(errs) > 0 {
		return nil, &DraftError{Errors: errs}
	}

	body, contentType, err := encodeDraft(d, cv)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.createTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/candidates", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var out domain.Candidate
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCandidates(ctx context.Context) ([]domain.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/candidates", nil)
	if err != nil {
		return nil, err
	}

	var out []domain.Candidate
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Candidate{}
	}
	return out, nil
}

func (c *Client) GetCandidate(ctx context.Context, id string) (*domain.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/candidates/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var out domain.Candidate
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}

	var env envelope
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{
			StatusCode:    resp.StatusCode,
			Message:       friendlyMessage(resp.StatusCode, env.Message),
			ServerMessage: env.Message,
			Errors:        env.Errors,
			RequestID:     env.RequestID,
		}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("atsclient: decode response: %w", err)
	}
	return nil
}

func encodeDraft(d Draft, cv *CVFile) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"firstName", d.FirstName},
		{"lastName", d.LastName},
		{"email", d.Email},
		{"phone", d.Phone},
		{"street", d.Street},
		{"city", d.City},
		{"state", d.State},
		{"postalCode", d.PostalCode},
		{"country", d.Country},
		{"status", d.Status},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	for name, v := range map[string]any{"tags": d.Tags, "education": d.Education, "experience": d.Experience} {
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("atsclient: encode %s: %w", name, err)
		}
		if err := w.WriteField(name, string(encoded)); err != nil {
			return nil, "", err
		}
	}

	if cv != nil && cv.Content != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="cv"; filename="%s"`, escapeQuotes(filepath.Base(cv.Name))))
		ct := cv.ContentType
		if ct == "" {
			ct = contentTypeFor(cv.Name)
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, cv.Content); err != nil {
			return nil, "", fmt.Errorf("atsclient: read CV: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
