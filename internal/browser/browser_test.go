package browser

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findChrome locates a browser for the end-to-end tests. CI images ship
// chromedp/headless-shell and set OGCARDS_REQUIRE_CHROME=1, which turns a
// missing binary into a failure instead of a skip.
func findChrome(t *testing.T) string {
	t.Helper()
	if path := os.Getenv("OGCARDS_CHROME_PATH"); path != "" {
		return path
	}
	for _, name := range []string{"headless-shell", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	if os.Getenv("OGCARDS_REQUIRE_CHROME") != "" {
		t.Fatal("OGCARDS_REQUIRE_CHROME is set but no Chrome binary was found")
	}
	t.Skip("no Chrome binary found; set OGCARDS_REQUIRE_CHROME=1 to fail instead")
	return ""
}

func TestIdleTrackerWaitsForInflight(t *testing.T) {
	idle := newIdleTracker()
	idle.handle(&network.EventRequestWillBeSent{RequestID: "1"})
	idle.handle(&network.EventRequestWillBeSent{RequestID: "2"})

	done := make(chan error, 1)
	go func() {
		done <- idle.wait(context.Background(), 100*time.Millisecond)
	}()

	idle.handle(&network.EventLoadingFinished{RequestID: "1"})
	select {
	case <-done:
		t.Fatal("wait returned with a request still in flight")
	case <-time.After(250 * time.Millisecond):
	}

	idle.handle(&network.EventLoadingFailed{RequestID: "2"})
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("wait did not return after the network went idle")
	}
}

func TestIdleTrackerHonorsContext(t *testing.T) {
	idle := newIdleTracker()
	idle.handle(&network.EventRequestWillBeSent{RequestID: "hung"})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := idle.wait(ctx, 10*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSessionCapture(t *testing.T) {
	chrome := findChrome(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	s, err := Open(ctx, Options{ExecPath: chrome, PageTimeout: 30 * time.Second})
	require.NoError(t, err)
	defer s.Close()

	for _, title := range []string{"First", "Second"} {
		shot, err := s.Capture(ctx, "<html><body><h1>"+title+"</h1></body></html>", 1200, 669)
		require.NoError(t, err)

		cfg, err := png.DecodeConfig(bytes.NewReader(shot))
		require.NoError(t, err)
		assert.Equal(t, 1200, cfg.Width)
		assert.Equal(t, 669, cfg.Height)
	}

	s.Close()
	s.Close()
}

func TestSessionCaptureWaitsForSubresources(t *testing.T) {
	chrome := findChrome(t)

	var served atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Header().Set("Content-Type", "image/png")
		png.Encode(w, image.NewRGBA(image.Rect(0, 0, 10, 10)))
		served.Store(true)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	s, err := Open(ctx, Options{ExecPath: chrome, PageTimeout: 30 * time.Second})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Capture(ctx, `<html><body><img src="`+srv.URL+`/slow.png"></body></html>`, 1200, 669)
	require.NoError(t, err)
	assert.True(t, served.Load(), "screenshot taken before the image finished loading")
}

func TestOpenFailsWithBadBinary(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := Open(ctx, Options{ExecPath: "/nonexistent/chrome"})
	assert.Error(t, err)
}
