package movieapi

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
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cinestream/internal/metrics"
	"cinestream/pkg/logger"
)

// ErrRequestFailed is returned for every failed backend call: transport
// errors, non-2xx statuses and undecodable bodies all collapse to it.
var ErrRequestFailed = errors.New("movieapi: request failed")

type Options struct {
	// BaseURL is the backend root, used for media references.
	BaseURL string
	// APIURL is the root of the movie and user endpoints.
	APIURL string
	// LoginURL is the token endpoint.
	LoginURL   string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
}

type Client struct {
	baseURL  string
	apiURL   string
	loginURL string
	http     *http.Client
	log      zerolog.Logger
	metrics  *metrics.Metrics
}

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		apiURL:   strings.TrimRight(opts.APIURL, "/"),
		loginURL: opts.LoginURL,
		http:     hc,
		log:      opts.Logger.With().Str("component", "movieapi").Logger(),
		metrics:  opts.Metrics,
	}
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.sendJSON(ctx, "login", http.MethodPost, c.loginURL, "", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, creds Credentials) (*User, error) {
	var out User
	if err := c.sendJSON(ctx, "register", http.MethodPost, c.apiURL+"/users/", "", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListMovies(ctx context.Context, cred Credential) ([]Movie, error) {
	var out []Movie
	if err := c.GetJSON(ctx, cred, "/movies/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetMovie(ctx context.Context, cred Credential, id int) (*Movie, error) {
	var out Movie
	if err := c.get(ctx, "get_movie", cred, "/movies/"+strconv.Itoa(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RateMovie(ctx context.Context, cred Credential, id, stars int) (*RateResponse, error) {
	var out RateResponse
	body := map[string]int{"stars": stars}
	endpoint := fmt.Sprintf("%s/movies/%d/rate_movie/", c.apiURL, id)
	if err := c.sendJSON(ctx, "rate_movie", http.MethodPost, endpoint, cred, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateMovie(ctx context.Context, cred Credential, in MovieInput) (*Movie, error) {
	var out Movie
	if err := c.sendMultipart(ctx, "create_movie", http.MethodPost, c.apiURL+"/movies/", cred, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMovie(ctx context.Context, cred Credential, id int, in MovieInput) (*Movie, error) {
	var out Movie
	endpoint := fmt.Sprintf("%s/movies/%d/", c.apiURL, id)
	if err := c.sendMultipart(ctx, "update_movie", http.MethodPut, endpoint, cred, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteMovie(ctx context.Context, cred Credential, id int) error {
	endpoint := fmt.Sprintf("%s/movies/%d/", c.apiURL, id)
	req, err := c.newRequest(ctx, http.MethodDelete, endpoint, cred, nil, "")
	if err != nil {
		return err
	}
	return c.do("delete_movie", req, nil)
}

// GetJSON fetches an API path (relative to the API root) into out.
func (c *Client) GetJSON(ctx context.Context, cred Credential, path string, out any) error {
	return c.get(ctx, "get", cred, path, out)
}

// MediaURL resolves a media reference returned by the backend. Absolute URLs
// pass through; relative ones are joined to the backend root.
func (c *Client) MediaURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "http") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return c.baseURL + ref
}

func (c *Client) get(ctx context.Context, op string, cred Credential, path string, out any) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := c.newRequest(ctx, http.MethodGet, c.apiURL+path, cred, nil, "")
	if err != nil {
		return err
	}
	return c.do(op, req, out)
}

func (c *Client) sendJSON(ctx context.Context, op, method, endpoint string, cred Credential, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		c.log.Error().Err(err).Str("op", op).Msg("encode request")
		return ErrRequestFailed
	}
	req, err := c.newRequest(ctx, method, endpoint, cred, bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}
	return c.do(op, req, out)
}

func (c *Client) sendMultipart(ctx context.Context, op, method, endpoint string, cred Credential, in MovieInput, out any) error {
	body, contentType, err := encodeMovieInput(in)
	if err != nil {
		c.log.Error().Err(err).Str("op", op).Msg("encode multipart")
		return ErrRequestFailed
	}
	req, err := c.newRequest(ctx, method, endpoint, cred, body, contentType)
	if err != nil {
		return err
	}
	return c.do(op, req, out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, cred Credential, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		c.log.Error().Err(err).Str("url", endpoint).Msg("build request")
		return nil, ErrRequestFailed
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if !cred.IsZero() {
		req.Header.Set("Authorization", cred.header())
	}
	return req, nil
}

func (c *Client) do(op string, req *http.Request, out any) (err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveAPI(op, err, time.Since(start)) }()

	ev := c.log.Debug().Str("op", op).Str("method", req.Method).Str("url", req.URL.String())
	if auth := req.Header.Get("Authorization"); auth != "" {
		ev = ev.Str("token", logger.RedactToken(strings.TrimPrefix(auth, "Token ")))
	}
	ev.Msg("backend request")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("op", op).Msg("backend unreachable")
		return ErrRequestFailed
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		c.log.Warn().Err(err).Str("op", op).Msg("read response")
		return ErrRequestFailed
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().Str("op", op).Int("status", resp.StatusCode).Str("body", snippet(body, 300)).Msg("backend rejected request")
		return ErrRequestFailed
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.log.Warn().Err(err).Str("op", op).Str("body", snippet(body, 300)).Msg("decode response")
		return ErrRequestFailed
	}
	return nil
}

func encodeMovieInput(in MovieInput) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fields := []struct{ name, value string }{
		{"title", in.Title},
		{"description", in.Description},
		{"category", in.Category},
		{"is_latest", strconv.FormatBool(in.IsLatest)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}
	if err := writeAttachment(mw, "image", in.Image); err != nil {
		return nil, "", err
	}
	if err := writeAttachment(mw, "trailer", in.Trailer); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf, mw.FormDataContentType(), nil
}

func writeAttachment(mw *multipart.Writer, field string, a *Attachment) error {
	if a == nil || len(a.Data) == 0 {
		return nil
	}
	name := a.Filename
	if name == "" {
		name = field
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
	ct := a.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(a.Data)
	return err
}

func snippet(data []byte, max int) string {
	if len(data) <= max {
		return string(data)
	}
	return string(data[:max]) + "..."
}
