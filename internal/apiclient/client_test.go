package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal/internal/models"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
	"github.com/noah-isme/school-portal/pkg/middleware/requestid"
)

type observerMock struct {
	mu       sync.Mutex
	statuses []int
	routes   []string
}

func (o *observerMock) ObserveUpstreamRequest(_ string, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, status)
	o.routes = append(o.routes, route)
}

func TestDoSendsBearerAndJSON(t *testing.T) {
	var gotAuth, gotType, gotReqID string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotReqID = r.Header.Get(requestid.HeaderKey)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"newFee":{"_id":"f1"}}`))
	}))
	defer srv.Close()

	obs := &observerMock{}
	c := New(Options{BaseURL: srv.URL + "/", Metrics: obs})
	ctx := requestid.WithValue(context.Background(), "req-9")

	resp, err := c.Do(ctx, Request{Method: http.MethodPost, Route: "/fee", Path: "/fee", Token: "tok", Body: map[string]interface{}{"amount": 10}})

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "req-9", gotReqID)
	assert.EqualValues(t, 10, gotBody["amount"])
	assert.Equal(t, []int{http.StatusCreated}, obs.statuses)
	assert.Equal(t, []string{"/fee"}, obs.routes)
}

func TestDoSurfacesBackendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"msg":"Invalid credentials"}`))
	}))
	defer srv.Close()

	_, err := New(Options{BaseURL: srv.URL}).Do(context.Background(), Request{Method: http.MethodPost, Path: "/user/login", Fallback: "Login failed. Please try again."})

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErr.Code)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
	assert.Equal(t, "Invalid credentials", appErr.Message)
}

func TestDoTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	obs := &observerMock{}
	_, err := New(Options{BaseURL: url, Metrics: obs}).Do(context.Background(), Request{Path: "/student"})

	assert.True(t, IsTransport(err))
	assert.Equal(t, []int{0}, obs.statuses)
}

func TestDoRejectsNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	_, err := New(Options{BaseURL: srv.URL}).Do(context.Background(), Request{Path: "/student"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrShape.Code))
}

func TestDoRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"studentsData":[{"_id":"s1","name":"A very long name"}]}`))
	}))
	defer srv.Close()

	_, err := New(Options{BaseURL: srv.URL, MaxBodyBytes: 16}).Do(context.Background(), Request{Path: "/student"})
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Equal(t, "backend response too large", appErrors.FromError(err).Message)

	resp, err := New(Options{BaseURL: srv.URL}).Do(context.Background(), Request{Path: "/student"})
	require.NoError(t, err)
	assert.Contains(t, string(resp.Body), "studentsData")
}

func TestDoMultipartWhenAttachmentPresent(t *testing.T) {
	var fields map[string][]string
	var fileName, fileBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = r.MultipartForm.Value
		fh := r.MultipartForm.File["profilePhoto"][0]
		fileName = fh.Filename
		f, _ := fh.Open()
		data, _ := io.ReadAll(f)
		fileBody = string(data)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	payload := models.Teacher{Username: "jdoe", Qualifications: []string{"BSc", "MEd"}}
	att := &models.Attachment{Field: "profilePhoto", Filename: "me.png", ContentType: "image/png", Reader: strings.NewReader("PNGDATA")}

	_, err := New(Options{BaseURL: srv.URL}).Do(context.Background(), Request{Method: http.MethodPost, Path: "/teacher", Body: payload, Attachment: att})

	require.NoError(t, err)
	assert.Equal(t, []string{"jdoe"}, fields["username"])
	assert.Equal(t, []string{`["BSc","MEd"]`}, fields["qualifications"])
	assert.Equal(t, "me.png", fileName)
	assert.Equal(t, "PNGDATA", fileBody)
}

func TestExtractMessageOrder(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"msg":"a","mes":"b"}`, "a"},
		{`{"mes":"b"}`, "b"},
		{`{"error":{"message":"nested"}}`, "nested"},
		{`{"error":"flat"}`, "flat"},
		{`{"message":"plain"}`, "plain"},
		{`{"other":1}`, "fallback"},
		{`not json`, "fallback"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExtractMessage([]byte(tc.body), "fallback"), tc.body)
	}
}
