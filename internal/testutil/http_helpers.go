package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

// Response is a fully read HTTP response.
type Response struct {
	Status   int
	Header   http.Header
	Body     []byte
	Location string
}

// HTTPGet sends a GET request and returns the response.
func HTTPGet(t testing.TB, target string) Response {
	t.Helper()
	return doRequest(t, http.MethodGet, target, nil, "")
}

// HTTPPostJSON sends payload as JSON and decodes the response into out when
// out is not nil.
func HTTPPostJSON(t testing.TB, target string, payload any, out any) Response {
	t.Helper()
	var body []byte
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = data
	}
	resp := doRequest(t, http.MethodPost, target, body, "application/json")
	if out != nil {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			t.Fatalf("decode response from %s: %v (%s)", target, err, string(resp.Body))
		}
	}
	return resp
}

// HTTPPostForm sends form values url-encoded.
func HTTPPostForm(t testing.TB, target string, values url.Values) Response {
	t.Helper()
	return doRequest(t, http.MethodPost, target, []byte(values.Encode()), "application/x-www-form-urlencoded")
}

// DecodeJSON unmarshals the response body into out.
func DecodeJSON(t testing.TB, resp Response, out any) {
	t.Helper()
	if err := json.Unmarshal(resp.Body, out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, string(resp.Body))
	}
}

// noRedirectClient surfaces 3xx responses to the caller.
var noRedirectClient = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

// doRequest executes an HTTP request and returns the read response.
func doRequest(t testing.TB, method, target string, payload []byte, contentType string) Response {
	t.Helper()
	ctx := Context(t, 2*time.Second)
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := noRedirectClient.Do(req)
	if err != nil {
		t.Fatalf("http request: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return Response{
		Status:   resp.StatusCode,
		Header:   resp.Header,
		Body:     body,
		Location: resp.Header.Get("Location"),
	}
}

// BodyContains reports whether the response body contains text.
func (r Response) BodyContains(text string) bool {
	return strings.Contains(string(r.Body), text)
}
