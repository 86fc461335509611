package google

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/option"
	"google.golang.org/api/vision/v1"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) ItfVision {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewWithOptions(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestExtractTextReturnsFirstAnnotation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/images:annotate") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req vision.BatchAnnotateImagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if got := req.Requests[0].Image.Content; got != base64.StdEncoding.EncodeToString([]byte("png-bytes")) {
			t.Errorf("unexpected image content %q", got)
		}
		if req.Requests[0].Features[0].Type != "TEXT_DETECTION" {
			t.Errorf("unexpected feature %s", req.Requests[0].Features[0].Type)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responses":[{"textAnnotations":[{"description":"Pay Rs 499 customs fee\nAWB 1234"},{"description":"Pay"}]}]}`))
	})

	text, err := client.ExtractText(context.Background(), []byte("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "Pay Rs 499 customs fee\nAWB 1234" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractTextWithoutAnnotations(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responses":[{}]}`))
	})

	text, err := client.ExtractText(context.Background(), []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
}

func TestExtractTextSurfacesResponseError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responses":[{"error":{"code":3,"message":"Bad image data."}}]}`))
	})

	_, err := client.ExtractText(context.Background(), []byte("img"), "image/png")
	if err == nil || !strings.Contains(err.Error(), "Bad image data.") {
		t.Fatalf("expected response error, got %v", err)
	}
}
