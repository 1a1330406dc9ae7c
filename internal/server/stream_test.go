package server

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeFrames struct {
	mu    sync.Mutex
	frame []byte
}

func (f *fakeFrames) LatestJPEG() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame
}

func TestStreamHandler_MethodNotAllowed(t *testing.T) {
	h := NewStreamHandler(&fakeFrames{}, time.Millisecond)

	req := httptest.NewRequest(http.MethodPost, "/api/stream", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestStreamHandler_WritesParts(t *testing.T) {
	frames := &fakeFrames{frame: []byte{0xFF, 0xD8, 0x01, 0xFF, 0xD9}}
	ts := httptest.NewServer(NewStreamHandler(frames, 5*time.Millisecond))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary=frame" {
		t.Errorf("Content-Type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	want := []string{"--frame\r\n", "Content-Type: image/jpeg\r\n", "Content-Length: 5\r\n", "\r\n"}
	for _, w := range want {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading header: %v", err)
		}
		if line != w {
			t.Errorf("line = %q, want %q", line, w)
		}
	}

	body := make([]byte, 5)
	if _, err := io.ReadFull(r, body); err != nil {
		t.Fatalf("reading frame: %v", err)
	}
	if !strings.HasPrefix(string(body), "\xFF\xD8") {
		t.Errorf("frame = %x, want the JPEG bytes", body)
	}
}

func TestWritePart(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := writePart(rec, []byte("abc")); err != nil {
		t.Fatal(err)
	}
	want := "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: 3\r\n\r\nabc\r\n"
	if rec.Body.String() != want {
		t.Errorf("part = %q, want %q", rec.Body.String(), want)
	}
}
