package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bottlebank/depositcam/pkg/analysis"
	"github.com/bottlebank/depositcam/pkg/camera"
	"github.com/bottlebank/depositcam/pkg/deposit"
	"github.com/bottlebank/depositcam/pkg/session"
)

func newTestServer(t *testing.T, analyzer analysis.Analyzer) (*Server, *camera.Remote) {
	t.Helper()

	remote := camera.NewRemote(slog.Default())
	sess, err := session.New(remote, analyzer, deposit.DefaultRates())
	if err != nil {
		t.Fatalf("session.New failed: %v", err)
	}
	remote.OnReady = func() { sess.SetCameraReady(true) }

	srv := NewServer(Config{
		Addr:    ":0",
		Session: sess,
		Remote:  remote,
		Logger:  slog.Default(),
	})
	return srv, remote
}

func doJSON(t *testing.T, srv *Server, method, path string, body []byte) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	var decoded map[string]any
	if len(data) > 0 && resp.Header.Get("Content-Type") != "image/jpeg" {
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("decode %s %s response %q: %v", method, path, data, err)
		}
	}
	return resp.StatusCode, decoded
}

func waitForResultState(t *testing.T, srv *Server) map[string]any {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		code, state := doJSON(t, srv, http.MethodGet, "/api/state", nil)
		if code != http.StatusOK {
			t.Fatalf("GET /api/state returned %d", code)
		}
		if state["state"] == "result" {
			return state
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("timed out waiting for result state")
	return nil
}

func TestServer_StateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, analysis.NewMock())

	code, state := doJSON(t, srv, http.MethodGet, "/api/state", nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if state["state"] != "idle" {
		t.Errorf("state = %v, want idle", state["state"])
	}
	if state["deposit_text"] != "$0.00" {
		t.Errorf("deposit_text = %v, want $0.00", state["deposit_text"])
	}
}

func TestServer_FullCaptureFlow(t *testing.T) {
	mock := analysis.NewMock()
	mock.AnalyzeFunc = func(ctx context.Context, image []byte) (*analysis.Result, error) {
		return &analysis.Result{Bottles: 2, Cans: 1}, nil
	}
	srv, _ := newTestServer(t, mock)

	// Start the camera.
	code, state := doJSON(t, srv, http.MethodPost, "/api/session/start", nil)
	if code != http.StatusOK {
		t.Fatalf("start status = %d, want 200", code)
	}
	if state["state"] != "capturing" {
		t.Errorf("state after start = %v, want capturing", state["state"])
	}

	// Browser uploads a frame; camera becomes ready.
	code, _ = doJSON(t, srv, http.MethodPost, "/api/camera/frame", []byte("jpeg-frame"))
	if code != http.StatusAccepted {
		t.Fatalf("frame upload status = %d, want 202", code)
	}

	// Capture.
	code, _ = doJSON(t, srv, http.MethodPost, "/api/session/capture", nil)
	if code != http.StatusOK {
		t.Fatalf("capture status = %d, want 200", code)
	}

	state = waitForResultState(t, srv)
	if state["bottle_count"] != float64(2) || state["can_count"] != float64(1) {
		t.Errorf("counts = {%v, %v}, want {2, 1}", state["bottle_count"], state["can_count"])
	}
	if state["deposit_cents"] != float64(15) {
		t.Errorf("deposit_cents = %v, want 15", state["deposit_cents"])
	}
	if state["deposit_text"] != "$0.15" {
		t.Errorf("deposit_text = %v, want $0.15", state["deposit_text"])
	}

	// Reset returns to idle.
	code, state = doJSON(t, srv, http.MethodPost, "/api/session/reset", nil)
	if code != http.StatusOK {
		t.Fatalf("reset status = %d, want 200", code)
	}
	if state["state"] != "idle" {
		t.Errorf("state after reset = %v, want idle", state["state"])
	}
}

func TestServer_CaptureConflicts(t *testing.T) {
	srv, _ := newTestServer(t, analysis.NewMock())

	// Capture from idle is refused.
	code, body := doJSON(t, srv, http.MethodPost, "/api/session/capture", nil)
	if code != http.StatusConflict {
		t.Fatalf("capture from idle status = %d, want 409", code)
	}
	if body["error"] == nil || body["error"] == "" {
		t.Error("conflict response should carry an error message")
	}

	// Capture before camera readiness is refused, state unchanged.
	if code, _ = doJSON(t, srv, http.MethodPost, "/api/session/start", nil); code != http.StatusOK {
		t.Fatalf("start status = %d, want 200", code)
	}
	code, _ = doJSON(t, srv, http.MethodPost, "/api/session/capture", nil)
	if code != http.StatusConflict {
		t.Fatalf("capture before readiness status = %d, want 409", code)
	}
	_, state := doJSON(t, srv, http.MethodGet, "/api/state", nil)
	if state["state"] != "capturing" {
		t.Errorf("state = %v, want capturing (unchanged)", state["state"])
	}
}

func TestServer_CancelOnlyWhileCapturing(t *testing.T) {
	srv, _ := newTestServer(t, analysis.NewMock())

	code, _ := doJSON(t, srv, http.MethodPost, "/api/session/cancel", nil)
	if code != http.StatusConflict {
		t.Fatalf("cancel from idle status = %d, want 409", code)
	}

	if code, _ = doJSON(t, srv, http.MethodPost, "/api/session/start", nil); code != http.StatusOK {
		t.Fatalf("start status = %d, want 200", code)
	}
	code, state := doJSON(t, srv, http.MethodPost, "/api/session/cancel", nil)
	if code != http.StatusOK {
		t.Fatalf("cancel status = %d, want 200", code)
	}
	if state["state"] != "idle" {
		t.Errorf("state after cancel = %v, want idle", state["state"])
	}
}

func TestServer_ImageEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, analysis.NewMock())

	// No image before a capture.
	req := httptest.NewRequest(http.MethodGet, "/api/image", nil)
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("GET /api/image failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	// Capture, then the image is served.
	doJSON(t, srv, http.MethodPost, "/api/session/start", nil)
	doJSON(t, srv, http.MethodPost, "/api/camera/frame", []byte("jpeg-data"))
	doJSON(t, srv, http.MethodPost, "/api/session/capture", nil)

	req = httptest.NewRequest(http.MethodGet, "/api/image", nil)
	resp, err = srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("GET /api/image failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q, want image/jpeg", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	if string(data) != "jpeg-data" {
		t.Errorf("image body = %q, want the captured frame", data)
	}
}

func TestServer_FrameUploadValidation(t *testing.T) {
	srv, _ := newTestServer(t, analysis.NewMock())

	code, body := doJSON(t, srv, http.MethodPost, "/api/camera/frame", nil)
	if code != http.StatusBadRequest {
		t.Fatalf("empty frame status = %d, want 400", code)
	}
	if body["error"] == nil || body["error"] == "" {
		t.Error("expected error message for empty frame")
	}
}

func TestServer_FrameUploadRejectedInKioskMode(t *testing.T) {
	src := camera.NewMock()
	sess, err := session.New(src, analysis.NewMock(), deposit.DefaultRates())
	if err != nil {
		t.Fatalf("session.New failed: %v", err)
	}

	srv := NewServer(Config{
		Addr:    ":0",
		Session: sess,
		Logger:  slog.Default(),
	})

	code, _ := doJSON(t, srv, http.MethodPost, "/api/camera/frame", []byte("frame"))
	if code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 when server owns the camera", code)
	}
}
