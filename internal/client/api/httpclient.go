package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dharitri-health/portal-cli/internal/client/models"
	"github.com/dharitri-health/portal-cli/internal/common"
)

// maxErrorBody bounds how much of an error response we read while looking
// for a "detail" payload.
const maxErrorBody = 64 << 10

// HTTPClient implements Client over net/http. The access token is kept on
// the client itself: Login stores it on success, SetAccessToken installs a
// persisted one at startup, and the session manager clears it on logout.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu          sync.RWMutex
	accessToken string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) SetAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

func (c *HTTPClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// do sends one request and decodes a JSON response into out (skipped when
// out is nil). Errors are normalized: transport failures wrap
// common.ErrUnavailable, a 401 becomes common.ErrUnauthorized, and any other
// non-2xx becomes a *ServerError with the backend's detail payload.
func (c *HTTPClient) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeader, uuid.NewString())
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return common.ErrUnauthorized
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// decodeError extracts the backend's "detail" payload. FastAPI sends it as
// a string on domain errors and as a list of field errors on validation
// failures; both are flattened into one readable message.
func (c *HTTPClient) decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return &ServerError{Status: resp.StatusCode}
	}

	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err == nil {
		return &ServerError{Status: resp.StatusCode, Detail: detail}
	}

	var fields []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &fields); err == nil && len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			name := ""
			if len(f.Loc) > 0 {
				name = fmt.Sprintf("%v", f.Loc[len(f.Loc)-1])
			}
			if name != "" {
				parts = append(parts, name+": "+f.Msg)
			} else {
				parts = append(parts, f.Msg)
			}
		}
		return &ServerError{Status: resp.StatusCode, Detail: strings.Join(parts, "; ")}
	}

	return &ServerError{Status: resp.StatusCode, Detail: string(body.Detail)}
}

// Login exchanges credentials for a bearer token via the form-encoded
// /token endpoint. The token is retained for subsequent calls.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var tok models.TokenResponse
	err := c.do(ctx, http.MethodPost, "/token", "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()), &tok)
	if err != nil {
		return nil, err
	}

	c.SetAccessToken(tok.AccessToken)
	return &tok, nil
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) error {
	body, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("encoding registration: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/register", "application/json", bytes.NewReader(body), nil)
}

func (c *HTTPClient) ListReports(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	if err := c.do(ctx, http.MethodGet, "/reports", "", nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (c *HTTPClient) PendingReports(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	if err := c.do(ctx, http.MethodGet, "/reports/pending", "", nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// AllReports returns every patient's reports with the owner's identity
// attached. Doctor-only on the backend; filtering happens client-side.
func (c *HTTPClient) AllReports(ctx context.Context) ([]models.PatientReport, error) {
	var reports []models.PatientReport
	if err := c.do(ctx, http.MethodGet, "/reports/all", "", nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// AnalyzeReport uploads one document as the multipart field "files" and
// returns the created report id with its analysis text.
func (c *HTTPClient) AnalyzeReport(ctx context.Context, filename string, content []byte) (*models.AnalyzeResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("files", filename)
	if err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}

	var res models.AnalyzeResult
	if err := c.do(ctx, http.MethodPost, "/reports/analyze", w.FormDataContentType(), &buf, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) UpdateReport(ctx context.Context, id int64, req models.UpdateReportRequest) (*models.Report, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding update: %w", err)
	}

	var report models.Report
	path := fmt.Sprintf("/reports/%d", id)
	if err := c.do(ctx, http.MethodPut, path, "application/json", bytes.NewReader(body), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *HTTPClient) DietConsult(ctx context.Context, q models.DietQuestion) (*models.DietAnswer, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encoding question: %w", err)
	}

	var answer models.DietAnswer
	if err := c.do(ctx, http.MethodPost, "/diet/consult", "application/json", bytes.NewReader(body), &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

func (c *HTTPClient) Chat(ctx context.Context, query string) (string, error) {
	body, err := json.Marshal(models.ChatRequest{Query: query})
	if err != nil {
		return "", fmt.Errorf("encoding query: %w", err)
	}

	var resp models.ChatResponse
	if err := c.do(ctx, http.MethodPost, "/chatbot", "application/json", bytes.NewReader(body), &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

func (c *HTTPClient) Health(ctx context.Context) error {
	var status struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", "", nil, &status); err != nil {
		return err
	}
	if status.Status != "healthy" {
		return common.ErrUnavailable
	}
	return nil
}
