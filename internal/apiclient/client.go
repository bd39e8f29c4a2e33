// Package apiclient talks to the remote school REST API. It owns the
// backend's wire conventions: bearer authentication, JSON or multipart
// bodies, varying list keys and the msg/mes error fields.
package apiclient

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
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/models"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
	"github.com/noah-isme/school-portal/pkg/logger"
	"github.com/noah-isme/school-portal/pkg/middleware/requestid"
)

// Observer receives timings of backend calls.
type Observer interface {
	ObserveUpstreamRequest(method, route string, status int, duration time.Duration)
}

// DefaultMaxBodyBytes caps a backend reply when Options leaves it unset.
const DefaultMaxBodyBytes int64 = 8 << 20

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
	Metrics    Observer
	// MaxBodyBytes bounds how much of a reply is read.
	MaxBodyBytes int64
}

// Client issues requests against the backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	metrics Observer
	maxBody int64
}

// New constructs a Client.
func New(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    client,
		logger:  log,
		metrics: opts.Metrics,
		maxBody: maxBody,
	}
}

// Request describes one backend call.
type Request struct {
	Method string
	// Route is the path template used for metrics, e.g. /student/:id.
	Route      string
	Path       string
	Query      url.Values
	Token      string
	Body       interface{}
	Attachment *models.Attachment
	// Fallback is the message reported when the backend gives none.
	Fallback string
}

// Response is a successful (2xx) backend reply.
type Response struct {
	Status int
	Header http.Header
	Body   json.RawMessage
}

// Do performs req. Non-2xx replies become UPSTREAM_ERROR carrying the
// backend status and message; network failures become TRANSPORT_ERROR and a
// 2xx body that is not JSON becomes SHAPE_ERROR.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.build(ctx, req)
	if err != nil {
		return nil, err
	}

	route := req.Route
	if route == "" {
		route = req.Path
	}
	log := logger.FromContext(ctx, c.logger).With(zap.String("method", httpReq.Method), zap.String("route", route))

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		c.observe(httpReq.Method, route, 0, duration)
		log.Warn("backend unreachable", zap.Error(err), zap.Duration("latency", duration))
		return nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, appErrors.ErrTransport.Message)
	}
	defer resp.Body.Close()
	c.observe(httpReq.Method, route, resp.StatusCode, duration)

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		log.Warn("backend body read failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, appErrors.ErrTransport.Message)
	}
	if int64(len(body)) > c.maxBody {
		log.Warn("backend body too large", zap.Int64("limit", c.maxBody))
		return nil, appErrors.Clone(appErrors.ErrTransport, "backend response too large")
	}
	log.Debug("backend request", zap.Int("status", resp.StatusCode), zap.Duration("latency", duration))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fallback := req.Fallback
		if fallback == "" {
			fallback = http.StatusText(resp.StatusCode)
		}
		return nil, appErrors.Upstream(resp.StatusCode, ExtractMessage(body, fallback))
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && !json.Valid(trimmed) {
		return nil, appErrors.Clone(appErrors.ErrShape, "backend returned a non-JSON body")
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: json.RawMessage(trimmed)}, nil
}

func (c *Client) observe(method, route string, status int, d time.Duration) {
	if c.metrics != nil {
		c.metrics.ObserveUpstreamRequest(method, route, status, d)
	}
}

func (c *Client) build(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Attachment != nil:
		buf, ct, err := multipartBody(req.Body, req.Attachment)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode multipart body")
		}
		body, contentType = buf, ct
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode request body")
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build backend request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if id := requestid.FromContext(ctx); id != "" {
		httpReq.Header.Set(requestid.HeaderKey, id)
	}
	return httpReq, nil
}

// multipartBody flattens payload into form fields: strings go as-is, other
// JSON values (numbers, booleans, arrays, objects) go as their JSON text.
func multipartBody(payload interface{}, att *models.Attachment) (*bytes.Buffer, string, error) {
	fields, err := formFields(payload)
	if err != nil {
		return nil, "", err
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, "", err
		}
	}

	if att.Reader != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, att.Field, att.Filename))
		ct := att.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		header.Set("Content-Type", ct)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, att.Reader); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func formFields(payload interface{}) (map[string]string, error) {
	out := map[string]string{}
	if payload == nil {
		return out, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("multipart payload must be an object: %w", err)
	}
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		switch {
		case len(v) == 0 || bytes.Equal(v, []byte("null")):
			continue
		case v[0] == '"':
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return nil, err
			}
			out[k] = s
		default:
			out[k] = string(v)
		}
	}
	return out, nil
}

// ExtractMessage reads the backend's error message, trying msg, mes,
// error.message, error and message in that order.
func ExtractMessage(body []byte, fallback string) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	for _, key := range []string{"msg", "mes"} {
		if s := stringField(payload[key]); s != "" {
			return s
		}
	}
	if raw, ok := payload["error"]; ok {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(raw, &nested); err == nil {
			if s := stringField(nested["message"]); s != "" {
				return s
			}
		}
		if s := stringField(raw); s != "" {
			return s
		}
	}
	if s := stringField(payload["message"]); s != "" {
		return s
	}
	return fallback
}

func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	return errors.Is(err, appErrors.ErrTransport)
}
