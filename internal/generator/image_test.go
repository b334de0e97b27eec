package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/config"
)

func TestImageClient_GenerateImage(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": "https://img.example/generated.png"}},
		})
	}))
	defer server.Close()

	client := NewImageClient(config.ImageAPIConfig{
		Endpoint: server.URL,
		APIKey:   "test-key",
		Model:    "image-model-1",
	})

	result, err := client.GenerateImage(context.Background(), "cbd sleep gummies")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.URL != "https://img.example/generated.png" {
		t.Errorf("unexpected url: %q", result.URL)
	}
	if gotBody["model"] != "image-model-1" {
		t.Errorf("unexpected model: %v", gotBody["model"])
	}
	// "sleep" is matched before "cbd".
	if !strings.Contains(result.Prompt, "bedroom") {
		t.Errorf("expected sleep scene in prompt: %q", result.Prompt)
	}
}

func TestImageClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewImageClient(config.ImageAPIConfig{Endpoint: server.URL, APIKey: "k", Model: "m"})
	if _, err := client.GenerateImage(context.Background(), "cbd oil"); err == nil {
		t.Fatal("expected error")
	}
}

func TestImageClient_EmptyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := NewImageClient(config.ImageAPIConfig{Endpoint: server.URL, APIKey: "k", Model: "m"})
	if _, err := client.GenerateImage(context.Background(), "cbd oil"); err == nil {
		t.Fatal("expected error for empty image data")
	}
}

func TestImagePrompt_Scenes(t *testing.T) {
	tests := []struct {
		keyword string
		want    string
	}{
		{"cbd sleep gummies", "bedroom"},
		{"cbd oil benefits", "hemp leaves"},
		{"anxiety relief tips", "meditation"},
		{"chronic pain management", "physiotherapy"},
		{"morning routines", "wellness setting"},
	}

	for _, tt := range tests {
		if got := imagePrompt(tt.keyword); !strings.Contains(got, tt.want) {
			t.Errorf("imagePrompt(%q) = %q, want substring %q", tt.keyword, got, tt.want)
		}
	}
}
