package hub

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(baseURL string) *Client {
	c := NewClient("test-token", testLogger())
	c.BaseURL = baseURL
	return c
}

func TestWhoami(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/whoami-v2" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Expected bearer token header, got %q", got)
		}
		fmt.Fprint(w, `{"name":"tester"}`)
	}))
	defer server.Close()

	name, err := newTestClient(server.URL).Whoami()
	if err != nil {
		t.Fatalf("Whoami failed: %v", err)
	}
	if name != "tester" {
		t.Errorf("Expected name tester, got %s", name)
	}
}

func TestWhoamiRejectedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Whoami()
	if err == nil {
		t.Error("Expected error for rejected token, got nil")
	}
}

func TestDownloadFileFirstStrategyWins(t *testing.T) {
	content := "testSet,questionImage,timestamp\n"

	var listingHits, resolveHits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/datasets/repo/data":
			listingHits++
			fmt.Fprint(w, `{"siblings":[{"rfilename":"gaze_data.csv"},{"rfilename":"README.md"}]}`)
		case "/datasets/repo/data/resolve/main/gaze_data.csv":
			resolveHits++
			fmt.Fprint(w, content)
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "gaze_data.csv")
	if err := newTestClient(server.URL).DownloadFile("repo/data", "gaze_data.csv", dest); err != nil {
		t.Fatalf("DownloadFile failed: %v", err)
	}

	// The api-listing strategy must succeed on its own: one listing call,
	// one resolve call, no fallback attempts.
	if listingHits != 1 {
		t.Errorf("Expected 1 listing hit, got %d", listingHits)
	}
	if resolveHits != 1 {
		t.Errorf("Expected 1 resolve hit, got %d", resolveHits)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("Downloaded file missing: %v", err)
	}
	if string(data) != content {
		t.Errorf("Expected content %q, got %q", content, string(data))
	}
}

func TestDownloadFileFallsBackToSecondStrategy(t *testing.T) {
	var listingHits, resolveHits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/datasets/repo/data":
			listingHits++
			w.WriteHeader(http.StatusInternalServerError)
		case "/datasets/repo/data/resolve/main/gaze_data.csv":
			resolveHits++
			fmt.Fprint(w, "data")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "gaze_data.csv")
	if err := newTestClient(server.URL).DownloadFile("repo/data", "gaze_data.csv", dest); err != nil {
		t.Fatalf("DownloadFile failed: %v", err)
	}

	if listingHits != 1 {
		t.Errorf("Expected 1 listing hit, got %d", listingHits)
	}
	if resolveHits != 1 {
		t.Errorf("Expected hub-download to succeed on first resolve hit, got %d", resolveHits)
	}

	// The managed download must not leave its temp file behind.
	if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
		t.Error("Expected temp file to be renamed away")
	}
}

func TestDownloadFileListingWithoutWantedFile(t *testing.T) {
	var resolveHits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/datasets/repo/data":
			fmt.Fprint(w, `{"siblings":[{"rfilename":"README.md"}]}`)
		case "/datasets/repo/data/resolve/main/gaze_data.csv":
			resolveHits++
			fmt.Fprint(w, "data")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "gaze_data.csv")
	if err := newTestClient(server.URL).DownloadFile("repo/data", "gaze_data.csv", dest); err != nil {
		t.Fatalf("DownloadFile failed: %v", err)
	}

	// api-listing fails (file not listed) but hub-download still fetches it.
	if resolveHits != 1 {
		t.Errorf("Expected 1 resolve hit from fallback, got %d", resolveHits)
	}
}

func TestDownloadFileAllStrategiesFail(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "gaze_data.csv")
	err := newTestClient(server.URL).DownloadFile("repo/data", "gaze_data.csv", dest)
	if err == nil {
		t.Fatal("Expected error when every strategy fails, got nil")
	}

	// One listing call plus one resolve call each for hub-download and
	// stream-download.
	if hits != 3 {
		t.Errorf("Expected 3 attempts, got %d", hits)
	}
}
