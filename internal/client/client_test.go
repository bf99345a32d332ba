package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewOpenWeatherClient_InvalidAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		wantErr error
	}{
		{
			name:    "empty API key",
			apiKey:  "",
			wantErr: ErrInvalidAPIKey,
		},
		{
			name:    "too short API key",
			apiKey:  "short",
			wantErr: ErrInvalidAPIKey,
		},
		{
			name:    "valid API key",
			apiKey:  "valid-api-key-12345",
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewOpenWeatherClient(tt.apiKey, "https://api.test.com", 2*time.Second)
			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("NewOpenWeatherClient() expected error, got nil")
				}
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewOpenWeatherClient() error = %v, want %v", err, tt.wantErr)
				}
				if client != nil {
					t.Errorf("NewOpenWeatherClient() expected nil client on error")
				}
			} else {
				if err != nil {
					t.Fatalf("NewOpenWeatherClient() unexpected error: %v", err)
				}
				if client == nil {
					t.Fatalf("NewOpenWeatherClient() expected client, got nil")
				}
			}
		})
	}
}

func sampleResponse() map[string]interface{} {
	return map[string]interface{}{
		"name": "Seattle",
		"main": map[string]interface{}{
			"temp":     20.0,
			"humidity": 65,
		},
		"weather": []map[string]interface{}{
			{
				"main":        "Clouds",
				"description": "scattered clouds",
			},
		},
		"wind": map[string]interface{}{
			"speed": 3.2,
		},
	}
}

func TestOpenWeatherClient_GetCurrentWeather_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/weather" {
			t.Errorf("path = %q, want /weather", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "Seattle" {
			t.Errorf("q = %q, want Seattle", q.Get("q"))
		}
		if q.Get("appid") != "test-api-key-12345" {
			t.Errorf("expected API key in query")
		}
		if q.Get("units") != "metric" {
			t.Errorf("units = %q, want metric", q.Get("units"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(sampleResponse())
	}))
	defer server.Close()

	client, err := NewOpenWeatherClient("test-api-key-12345", server.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}

	got, err := client.GetCurrentWeather(context.Background(), "Seattle")
	if err != nil {
		t.Fatalf("GetCurrentWeather() error = %v", err)
	}

	if got.City != "Seattle" {
		t.Errorf("City = %q, want %q", got.City, "Seattle")
	}
	if got.TemperatureC != 20 {
		t.Errorf("TemperatureC = %f, want 20", got.TemperatureC)
	}
	if got.Fahrenheit() != 68 {
		t.Errorf("Fahrenheit() = %f, want 68", got.Fahrenheit())
	}
	if got.Condition != "Clouds" {
		t.Errorf("Condition = %q, want %q", got.Condition, "Clouds")
	}
	if got.Humidity != 65 {
		t.Errorf("Humidity = %d, want %d", got.Humidity, 65)
	}
	if got.WindSpeed != 3.2 {
		t.Errorf("WindSpeed = %f, want %f", got.WindSpeed, 3.2)
	}
	if got.FetchedAt.IsZero() {
		t.Error("FetchedAt should be set")
	}
}

func TestOpenWeatherClient_GetCurrentWeather_TrailingSlashBase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/weather" {
			t.Errorf("path = %q, want /data/2.5/weather", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(sampleResponse())
	}))
	defer server.Close()

	client, err := NewOpenWeatherClient("test-api-key-12345", server.URL+"/data/2.5/", 2*time.Second)
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	if _, err := client.GetCurrentWeather(context.Background(), "Seattle"); err != nil {
		t.Fatalf("GetCurrentWeather() error = %v", err)
	}
}

func TestOpenWeatherClient_GetCurrentWeather_NameFallsBackToQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := sampleResponse()
		delete(resp, "name")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, _ := NewOpenWeatherClient("test-api-key-12345", server.URL, 2*time.Second)
	got, err := client.GetCurrentWeather(context.Background(), "Springfield")
	if err != nil {
		t.Fatalf("GetCurrentWeather() error = %v", err)
	}
	if got.City != "Springfield" {
		t.Errorf("City = %q, want Springfield", got.City)
	}
}

func TestOpenWeatherClient_GetCurrentWeather_ErrorHandling(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    error
	}{
		{"401 unauthorized", http.StatusUnauthorized, ErrInvalidAPIKey},
		{"404 not found", http.StatusNotFound, ErrLocationNotFound},
		{"429 rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"500 server error", http.StatusInternalServerError, ErrUpstreamFailure},
		{"502 bad gateway", http.StatusBadGateway, ErrUpstreamFailure},
		{"418 other client error", http.StatusTeapot, ErrUpstreamFailure},
		{"304 not modified", http.StatusNotModified, ErrUpstreamFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			client, err := NewOpenWeatherClient("test-api-key-12345", server.URL, 2*time.Second)
			if err != nil {
				t.Fatalf("NewOpenWeatherClient() error = %v", err)
			}

			_, err = client.GetCurrentWeather(context.Background(), "test")
			if err == nil {
				t.Fatalf("GetCurrentWeather() expected error, got nil")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GetCurrentWeather() error = %v, want %v", err, tt.wantErr)
			}
			if n := calls.Load(); n != 1 {
				t.Errorf("provider called %d times, want exactly 1 (no retry)", n)
			}
		})
	}
}

func TestOpenWeatherClient_GetCurrentWeather_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{not json"))
	}))
	defer server.Close()

	client, _ := NewOpenWeatherClient("test-api-key-12345", server.URL, 2*time.Second)
	_, err := client.GetCurrentWeather(context.Background(), "test")
	if err == nil {
		t.Fatal("GetCurrentWeather() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "parse response") {
		t.Errorf("error = %v, want parse response error", err)
	}
	if CategorizeError(err) != ErrorCategoryParsing {
		t.Errorf("CategorizeError() = %v, want parsing", CategorizeError(err))
	}
}

func TestOpenWeatherClient_GetCurrentWeather_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, _ := NewOpenWeatherClient("test-api-key-12345", url, 2*time.Second)
	_, err := client.GetCurrentWeather(context.Background(), "test")
	if err == nil {
		t.Fatal("GetCurrentWeather() expected error for closed server, got nil")
	}
	if !strings.Contains(err.Error(), "http request failed") {
		t.Errorf("error = %v, want http request failed", err)
	}
}

func TestOpenWeatherClient_GetCurrentWeather_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewOpenWeatherClient("test-api-key-12345", server.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.GetCurrentWeather(ctx, "test")
	if err == nil {
		t.Fatalf("GetCurrentWeather() expected error, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("GetCurrentWeather() error = %v, want context.Canceled", err)
	}
}

func TestOpenWeatherClient_GetCurrentWeather_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, _ := NewOpenWeatherClient("test-api-key-12345", server.URL, 50*time.Millisecond)
	_, err := client.GetCurrentWeather(context.Background(), "test")
	if err == nil {
		t.Fatal("GetCurrentWeather() expected timeout error, got nil")
	}
	if CategorizeError(err) != ErrorCategoryTimeout {
		t.Errorf("CategorizeError() = %v, want timeout (err = %v)", CategorizeError(err), err)
	}
}

func TestOpenWeatherClient_GetCurrentWeather_CorrelationID(t *testing.T) {
	var capturedCorrID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedCorrID = r.Header.Get("X-Correlation-ID")
		_ = json.NewEncoder(w).Encode(sampleResponse())
	}))
	defer server.Close()

	client, _ := NewOpenWeatherClient("test-api-key-12345", server.URL, 2*time.Second)
	ctx := context.WithValue(context.Background(), "correlation_id", "corr-123")
	if _, err := client.GetCurrentWeather(ctx, "Seattle"); err != nil {
		t.Fatalf("GetCurrentWeather() error = %v", err)
	}
	if capturedCorrID != "corr-123" {
		t.Errorf("X-Correlation-ID = %q, want corr-123", capturedCorrID)
	}
}

func TestOpenWeatherClient_ValidateAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    error
		wantAnyErr bool
	}{
		{"valid", http.StatusOK, nil, false},
		{"unauthorized", http.StatusUnauthorized, ErrInvalidAPIKey, true},
		{"server error", http.StatusInternalServerError, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			client, _ := NewOpenWeatherClient("test-api-key-12345", server.URL, 2*time.Second)
			err := client.ValidateAPIKey(context.Background())
			if tt.wantAnyErr && err == nil {
				t.Fatal("ValidateAPIKey() expected error, got nil")
			}
			if !tt.wantAnyErr && err != nil {
				t.Fatalf("ValidateAPIKey() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAPIKey() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
