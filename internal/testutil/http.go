package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const maxBodySnippet = 256

// Serve executes a request against the provided handler and returns the recorder.
func Serve(h http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// ServeJSON executes a request with a JSON body literal.
func ServeJSON(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	return Serve(h, method, path, strings.NewReader(body))
}

// ServeRequest executes the given request against the handler.
func ServeRequest(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// AssertStatus verifies the response status code.
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if err := statusError(rr, want); err != nil {
		t.Fatal(err)
	}
}

// DecodeJSON decodes the recorder body into dest, failing the test on error.
func DecodeJSON(t *testing.T, rr *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := decodeJSONBody(rr, dest); err != nil {
		t.Fatal(err)
	}
}

func statusError(rr *httptest.ResponseRecorder, want int) error {
	if rr.Code == want {
		return nil
	}
	body := rr.Body.String()
	if len(body) > maxBodySnippet {
		body = body[:maxBodySnippet] + "..."
	}
	return fmt.Errorf("expected status %d, got %d body=%s", want, rr.Code, body)
}

func decodeJSONBody(rr *httptest.ResponseRecorder, dest any) error {
	if err := json.NewDecoder(rr.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
