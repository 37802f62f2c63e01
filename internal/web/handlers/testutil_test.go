package handlers

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/kozaktomas/celebrity-detector/internal/ai"
	"github.com/kozaktomas/celebrity-detector/internal/celebrity"
	"github.com/kozaktomas/celebrity-detector/internal/database"
	"github.com/kozaktomas/celebrity-detector/internal/facedetect"
	"github.com/kozaktomas/celebrity-detector/internal/logging"
	"github.com/kozaktomas/celebrity-detector/internal/web/middleware"
)

const bradPittInfo = "-**Full Name**: Brad Pitt\n-**Profession**: Actor"

type stubDetector struct {
	boxes []facedetect.Box
}

func (d *stubDetector) Detect(image.Image) []facedetect.Box {
	return d.boxes
}

type stubProvider struct {
	mu           sync.Mutex
	info         string
	answer       string
	err          error
	identifyCall int
	lastName     string
	lastQuestion string
}

func (p *stubProvider) Name() string { return "stub-model" }

func (p *stubProvider) IdentifyCelebrity(ctx context.Context, imageData []byte) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.identifyCall++
	return p.info, p.err
}

func (p *stubProvider) AskAboutCelebrity(ctx context.Context, name, question string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastName, p.lastQuestion = name, question
	return p.answer, p.err
}

func (p *stubProvider) GetUsage() ai.Usage { return ai.Usage{InputTokens: 10, OutputTokens: 5} }
func (p *stubProvider) ResetUsage()        {}

// faceDetector reports a single face in any image.
func faceDetector() *stubDetector {
	return &stubDetector{boxes: []facedetect.Box{{X: 10, Y: 10, Width: 40, Height: 40}}}
}

// newTestService builds a service without cache; history may be nil.
func newTestService(t *testing.T, det facedetect.Detector, prov ai.Provider, history database.HistoryStore) *celebrity.Service {
	t.Helper()
	return celebrity.NewService(celebrity.Options{
		Detector: det,
		Provider: prov,
		History:  history,
		Logger:   logging.NewNopLogger(),
	})
}

func newTestPageHandler(t *testing.T, svc *celebrity.Service) *PageHandler {
	t.Helper()
	return NewPageHandler(svc, middleware.NewRecentLookups("test-secret"), logging.NewNopLogger())
}

// testPNG returns an encoded gray PNG.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

// multipartRequest builds a POST with an optional file part and extra fields.
func multipartRequest(t *testing.T, path, field string, file []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		part, err := mw.CreateFormFile(field, "photo.png")
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		part.Write(file)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
