package receiver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blcsview/internal/codec"
	"blcsview/internal/feed"
	"blcsview/internal/frame"
	"blcsview/internal/loaded"
)

func encoded(t *testing.T, format codec.Format) []byte {
	t.Helper()
	data, err := codec.Encode(format, loaded.LoadedFrame{
		Meta:  loaded.Meta{Name: "push", Version: "2"},
		Frame: frame.MustNew(frame.Uints("Identifier", 1, 2), frame.Floats("DDOC.V1", 0.7, 0.8)),
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return data
}

func TestServer_HandleFrame(t *testing.T) {
	ch := feed.New(feed.Options{})
	s := NewServer("", ch.Sender(), nil)

	tests := []struct {
		name        string
		method      string
		url         string
		contentType string
		body        []byte
		wantStatus  int
	}{
		{"msgpack", http.MethodPost, "/frames", "application/msgpack", encoded(t, codec.FormatMsgpack), http.StatusAccepted},
		{"json by name", http.MethodPost, "/frames?name=run.json", "", encoded(t, codec.FormatJSON), http.StatusAccepted},
		{"wrong method", http.MethodGet, "/frames", "", nil, http.StatusMethodNotAllowed},
		{"unknown type", http.MethodPost, "/frames", "image/png", []byte("x"), http.StatusUnsupportedMediaType},
		{"bad body", http.MethodPost, "/frames", "application/json", []byte("{"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.url, bytes.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status: expected %d, got %d (%s)", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if rec.Code == http.StatusAccepted {
				var acc Accepted
				if err := json.Unmarshal(rec.Body.Bytes(), &acc); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if acc.ID == "" || acc.Rows != 2 || acc.Name != "push" {
					t.Errorf("response: got %+v", acc)
				}
			}
		})
	}

	got := ch.DrainFrames()
	if len(got) != 2 {
		t.Fatalf("DrainFrames: expected 2 deliveries, got %d", len(got))
	}
	if got[1].Topic != "run.json" || got[1].Source != feed.SourceHTTP {
		t.Errorf("delivery: got topic %q source %s", got[1].Topic, got[1].Source)
	}
}

func TestServer_ClosedFeed(t *testing.T) {
	ch := feed.New(feed.Options{})
	ch.Close()
	s := NewServer("", ch.Sender(), nil)

	req := httptest.NewRequest(http.MethodPost, "/frames", bytes.NewReader(encoded(t, codec.FormatJSON)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status: expected 503, got %d", rec.Code)
	}
}

func TestServer_StartStop(t *testing.T) {
	ch := feed.New(feed.Options{})
	s := NewServer("127.0.0.1:0", ch.Sender(), nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	resp, err := http.Post("http://"+s.Addr()+"/frames", "application/json", bytes.NewReader(encoded(t, codec.FormatJSON)))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("status: expected 202, got %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if n := len(ch.DrainFrames()); n != 1 {
		t.Errorf("DrainFrames: expected 1, got %d", n)
	}
}
