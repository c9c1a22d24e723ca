package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/tripcat/internal/client/models"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// PlaceholderImageURL is served instead of a broken or missing picture
// reference so a render never fails on images.
const PlaceholderImageURL = "https://via.placeholder.com/300x200/667eea/ffffff?text=Vacation"

const requestIDHeader = "X-Request-Id"

// readRetryBase and readRetryMax bound the retry affordance for read
// operations. Writes are never retried; they are not idempotent.
const (
	readRetryBase = 200 * time.Millisecond
	readRetryMax  = 2
)

// HTTPClient implements Client over the service's HTTP+JSON surface.
// Safe for concurrent use; the bearer token is guarded separately so
// like toggles on different vacations can proceed in parallel.
type HTTPClient struct {
	baseURL string
	hc      *http.Client

	mu    sync.RWMutex
	token string
}

// NewHTTPClient builds a client for the service rooted at baseURL
// (e.g. "http://localhost:5000"). Timeout bounds every request.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) ClearToken() {
	c.SetToken("")
}

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ImageURL resolves a picture file name against the service's static path.
// Blank references resolve to the placeholder instead of a dead link.
func (c *HTTPClient) ImageURL(fileName string) string {
	if strings.TrimSpace(fileName) == "" {
		return PlaceholderImageURL
	}
	return c.baseURL + "/images/" + fileName
}

// ---- request plumbing ----

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set(requestIDHeader, uuid.NewString())
	return req, nil
}

// do sends the request and decodes a 2xx body into out (when out != nil).
// Non-success answers become *Error carrying the service's error/message
// field verbatim; transport failures map to ErrUnavailable.
func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{StatusCode: resp.StatusCode, Message: readErrorMessage(resp)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}

// readErrorMessage extracts the failure reason from a non-success body.
// The service answers either {"error": "..."} or {"message": "..."}.
func readErrorMessage(resp *http.Response) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return http.StatusText(resp.StatusCode)
}

// getJSON performs a GET with bounded exponential retry on unavailability.
func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	backoff := retry.WithMaxRetries(readRetryMax, retry.NewExponential(readRetryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
		if err != nil {
			return err
		}
		if err := c.do(req, out); err != nil {
			if errors.Is(err, ErrUnavailable) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
}

func (c *HTTPClient) sendJSON(ctx context.Context, method, path string, in, out any) error {
	buf := &bytes.Buffer{}
	if in != nil {
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
	}
	req, err := c.newRequest(ctx, method, path, buf, "application/json")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// ---- auth ----

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	in := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/login", in, &resp); err != nil {
		return nil, "", err
	}
	if resp.User == nil || resp.Token == "" {
		return nil, "", fmt.Errorf("%w: login answer missing user or token", ErrBadResponse)
	}
	c.SetToken(resp.Token)
	return resp.User, resp.Token, nil
}

func (c *HTTPClient) Register(ctx context.Context, p RegisterPayload) (*models.User, string, error) {
	var resp authResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/register", p, &resp); err != nil {
		return nil, "", err
	}
	if resp.User == nil || resp.Token == "" {
		return nil, "", fmt.Errorf("%w: register answer missing user or token", ErrBadResponse)
	}
	c.SetToken(resp.Token)
	return resp.User, resp.Token, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.getJSON(ctx, "/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ---- vacations ----

// vacationsEnvelope accepts the current {"vacations": []} shape and the
// legacy {"data": []} one. Anything else is rejected at this boundary.
type vacationsEnvelope struct {
	Vacations []models.Vacation `json:"vacations"`
	Data      []models.Vacation `json:"data"`
}

func (c *HTTPClient) ListVacations(ctx context.Context) ([]models.Vacation, error) {
	var env vacationsEnvelope
	if err := c.getJSON(ctx, "/vacations", &env); err != nil {
		return nil, err
	}
	switch {
	case env.Vacations != nil:
		return env.Vacations, nil
	case env.Data != nil:
		return env.Data, nil
	default:
		return nil, fmt.Errorf("%w: vacations list missing", ErrBadResponse)
	}
}

func (c *HTTPClient) GetVacation(ctx context.Context, id int) (*models.Vacation, error) {
	var v models.Vacation
	if err := c.getJSON(ctx, "/vacations/"+strconv.Itoa(id), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *HTTPClient) ListUserLikes(ctx context.Context) ([]int, error) {
	var env struct {
		LikedVacations []int `json:"liked_vacations"`
	}
	if err := c.getJSON(ctx, "/vacations/user-likes", &env); err != nil {
		return nil, err
	}
	// A user with no likes may get an absent list; normalize to empty.
	return env.LikedVacations, nil
}

func (c *HTTPClient) CreateVacation(ctx context.Context, p VacationPayload) (*models.Vacation, error) {
	var v models.Vacation
	if p.ImagePath == "" {
		if err := c.sendJSON(ctx, http.MethodPost, "/vacations", p, &v); err != nil {
			return nil, err
		}
		return &v, nil
	}
	if err := c.sendMultipart(ctx, http.MethodPost, "/vacations", p, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *HTTPClient) UpdateVacation(ctx context.Context, id int, p VacationPayload) (*models.Vacation, error) {
	path := "/vacations/" + strconv.Itoa(id)
	var v models.Vacation
	if p.ImagePath == "" {
		if err := c.sendJSON(ctx, http.MethodPut, path, p, &v); err != nil {
			return nil, err
		}
		return &v, nil
	}
	if err := c.sendMultipart(ctx, http.MethodPut, path, p, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *HTTPClient) DeleteVacation(ctx context.Context, id int) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/vacations/"+strconv.Itoa(id), nil, "")
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// sendMultipart encodes the payload fields plus the image file into a
// multipart body, matching the service's upload contract.
func (c *HTTPClient) sendMultipart(ctx context.Context, method, path string, p VacationPayload, out any) error {
	file, err := os.Open(p.ImagePath)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := map[string]string{
		"vacation_description": p.Description,
		"country_id":           strconv.Itoa(p.CountryID),
		"vacation_start":       p.Start.String(),
		"vacation_end":         p.End.String(),
		"price":                strconv.FormatFloat(p.Price, 'f', -1, 64),
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return err
		}
	}

	part, err := w.CreateFormFile("image", filepath.Base(p.ImagePath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, method, path, buf, w.FormDataContentType())
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// ---- likes ----

func (c *HTTPClient) AddLike(ctx context.Context, vacationID int) error {
	in := map[string]int{"vacation_id": vacationID}
	return c.sendJSON(ctx, http.MethodPost, "/likes", in, nil)
}

func (c *HTTPClient) RemoveLike(ctx context.Context, vacationID int) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/likes/"+strconv.Itoa(vacationID), nil, "")
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// ---- countries ----

type countriesEnvelope struct {
	Countries []models.Country `json:"countries"`
	Data      []models.Country `json:"data"`
}

func (c *HTTPClient) ListCountries(ctx context.Context) ([]models.Country, error) {
	var env countriesEnvelope
	if err := c.getJSON(ctx, "/countries", &env); err != nil {
		return nil, err
	}
	switch {
	case env.Countries != nil:
		return env.Countries, nil
	case env.Data != nil:
		return env.Data, nil
	default:
		return nil, fmt.Errorf("%w: countries list missing", ErrBadResponse)
	}
}

func (c *HTTPClient) GetCountry(ctx context.Context, id int) (*models.Country, error) {
	var country models.Country
	if err := c.getJSON(ctx, "/countries/"+strconv.Itoa(id), &country); err != nil {
		return nil, err
	}
	return &country, nil
}

var _ Client = (*HTTPClient)(nil)
