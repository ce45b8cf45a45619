package identify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"depotscan/internal/domain"
)

func testPayload() domain.ImagePayload {
	return domain.ImagePayload{
		Bytes:    []byte{0xFF, 0xD8, 0xFF, 0xE0, 'j', 'p', 'e', 'g'},
		MimeType: "image/jpeg",
		Source:   domain.SourceCamera,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{EndpointURL: server.URL + "/upload"}, nil), server
}

func TestIdentifyInInventory(t *testing.T) {
	t.Parallel()

	var gotField string
	var gotBytes []byte
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parse multipart failed: %v", err)
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Errorf("missing image field: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotField = header.Filename
		gotBytes, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"identification": {
				"identified_item": "Erlenmeyer Flask 250ml",
				"item_type": "Flask",
				"confidence": "High",
				"key_features": ["conical body", "graduations"],
				"notes": "borosilicate glass"
			},
			"item_in_inventory": true,
			"product_url": "https://shop.example/flask-250",
			"image_data": "data:image/jpeg;base64,abc"
		}`))
	})

	result, err := client.Identify(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("identify failed: %v", err)
	}

	if result.Outcome != domain.OutcomeInInventory {
		t.Fatalf("unexpected outcome: %q", result.Outcome)
	}
	if result.ProductURL != "https://shop.example/flask-250" {
		t.Fatalf("unexpected product url: %q", result.ProductURL)
	}
	if result.Item.Name != "Erlenmeyer Flask 250ml" || result.Item.Confidence != domain.ConfidenceHigh {
		t.Fatalf("unexpected item: %+v", result.Item)
	}
	if len(result.Item.KeyFeatures) != 2 || result.Item.KeyFeatures[0] != "conical body" {
		t.Fatalf("unexpected key features: %v", result.Item.KeyFeatures)
	}
	if result.ImageData != "data:image/jpeg;base64,abc" {
		t.Fatalf("expected echoed image data, got %q", result.ImageData)
	}

	if gotField != "capture.jpg" {
		t.Fatalf("unexpected upload filename: %q", gotField)
	}
	if string(gotBytes) != string(testPayload().Bytes) {
		t.Fatalf("uploaded bytes do not match payload")
	}
}

func TestIdentifyNotFound(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"identification": {
				"identified_item": "Not Found",
				"item_type": "Unknown",
				"confidence": "Low",
				"key_features": [],
				"notes": "image too blurry"
			},
			"item_in_inventory": false,
			"product_url": null
		}`))
	})

	result, err := client.Identify(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("identify failed: %v", err)
	}
	if result.Outcome != domain.OutcomeNotFound {
		t.Fatalf("unexpected outcome: %q", result.Outcome)
	}
	if result.Notes != "image too blurry" {
		t.Fatalf("unexpected notes: %q", result.Notes)
	}
}

func TestIdentifyNoInventory(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"identification": {
				"identified_item": "Red Bull Energy Drink",
				"item_type": "Beverage",
				"confidence": "Medium",
				"key_features": ["slim can"],
				"notes": ""
			},
			"item_in_inventory": false,
			"product_url": null
		}`))
	})

	result, err := client.Identify(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("identify failed: %v", err)
	}
	if result.Outcome != domain.OutcomeNoInventory {
		t.Fatalf("unexpected outcome: %q", result.Outcome)
	}
	if result.ProductURL != "" {
		t.Fatalf("out-of-inventory result should carry no product url")
	}
}

func TestIdentifyApplicationError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": false, "error": "AI service not configured"}`))
	})

	_, err := client.Identify(context.Background(), testPayload())
	var appErr *ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *ApplicationError, got %v", err)
	}
	if appErr.Message != "AI service not configured" {
		t.Fatalf("unexpected message: %q", appErr.Message)
	}
}

func TestIdentifyServerError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	})

	_, err := client.Identify(context.Background(), testPayload())
	var serverErr *ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("expected *ServerError, got %v", err)
	}
	if serverErr.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", serverErr.Status)
	}
	if serverErr.Body != "internal server error" {
		t.Fatalf("unexpected body: %q", serverErr.Body)
	}
}

func TestIdentifyMalformedBodyIsProtocolError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": tru`))
	})

	_, err := client.Identify(context.Background(), testPayload())
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected *ProtocolError, got %v", err)
	}
}

func TestIdentifyMissingIdentificationBlockIsProtocolError(t *testing.T) {
	t.Parallel()

	// A success body with no identification block must not coerce to a
	// "not found" result.
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "item_in_inventory": false}`))
	})

	_, err := client.Identify(context.Background(), testPayload())
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected *ProtocolError, got %v", err)
	}
}

func TestIdentifyNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL + "/upload"
	server.Close()

	client := NewClient(Config{EndpointURL: endpoint}, nil)
	_, err := client.Identify(context.Background(), testPayload())
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
}

func TestParseConfidence(t *testing.T) {
	t.Parallel()

	cases := map[string]domain.Confidence{
		"High":     domain.ConfidenceHigh,
		"medium":   domain.ConfidenceMedium,
		"LOW":      domain.ConfidenceLow,
		"":         domain.ConfidenceLow,
		"whatever": domain.ConfidenceLow,
	}
	for input, want := range cases {
		if got := parseConfidence(input); got != want {
			t.Fatalf("parseConfidence(%q) = %q, want %q", input, got, want)
		}
	}
}
