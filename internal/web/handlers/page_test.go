package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/kozaktomas/celebrity-detector/internal/constants"
)

func postQuestion(fields url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(fields.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestPageShow_EmptyPage(t *testing.T) {
	h := newTestPageHandler(t, newTestService(t, faceDetector(), &stubProvider{}, nil))

	recorder := httptest.NewRecorder()
	h.Show(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	body := recorder.Body.String()
	if !strings.Contains(body, `name="image"`) {
		t.Error("expected upload form")
	}
	if strings.Contains(body, "data:image/jpeg;base64,") {
		t.Error("empty page should not contain an image")
	}
	if strings.Contains(body, `name="question"`) {
		t.Error("empty page should not contain the question form")
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("unexpected Content-Type %q", ct)
	}
}

func TestPageSubmit_IdentifiesCelebrity(t *testing.T) {
	prov := &stubProvider{info: bradPittInfo}
	h := newTestPageHandler(t, newTestService(t, faceDetector(), prov, nil))

	recorder := httptest.NewRecorder()
	h.Submit(recorder, multipartRequest(t, "/", "image", testPNG(t, 100, 100), nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	body := recorder.Body.String()
	for _, want := range []string{
		`src="data:image/jpeg;base64,`,
		`name="celeb_name" value="Brad Pitt"`,
		`name="result_img_data" value="`,
		"-**Profession**: Actor",
		`name="question"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("response missing %q", want)
		}
	}
	if prov.identifyCall != 1 {
		t.Errorf("expected 1 identify call, got %d", prov.identifyCall)
	}

	cookies := recorder.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected recent-lookups cookie, got %d cookies", len(cookies))
	}
}

func TestPageSubmit_RecentLookupsShown(t *testing.T) {
	h := newTestPageHandler(t, newTestService(t, faceDetector(), &stubProvider{info: bradPittInfo}, nil))

	first := httptest.NewRecorder()
	h.Submit(first, multipartRequest(t, "/", "image", testPNG(t, 100, 100), nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range first.Result().Cookies() {
		req.AddCookie(c)
	}
	recorder := httptest.NewRecorder()
	h.Show(recorder, req)

	if !strings.Contains(recorder.Body.String(), "<li>Brad Pitt</li>") {
		t.Error("expected Brad Pitt in recent lookups")
	}
}

func TestPageSubmit_NoFaceDetected(t *testing.T) {
	prov := &stubProvider{info: bradPittInfo}
	h := newTestPageHandler(t, newTestService(t, &stubDetector{}, prov, nil))

	recorder := httptest.NewRecorder()
	h.Submit(recorder, multipartRequest(t, "/", "image", testPNG(t, 100, 100), nil))

	body := recorder.Body.String()
	if !strings.Contains(body, "No face detected! Please try another image.") {
		t.Error("expected no-face message")
	}
	if strings.Contains(body, "data:image/jpeg;base64,") {
		t.Error("no image expected when no face was detected")
	}
	if strings.Contains(body, `name="question"`) {
		t.Error("question form should not be shown without a name")
	}
	if prov.identifyCall != 0 {
		t.Errorf("provider must not be called without a face, got %d calls", prov.identifyCall)
	}
}

func TestPageSubmit_ProviderFailure(t *testing.T) {
	prov := &stubProvider{err: errors.New("API error (status 500)")}
	h := newTestPageHandler(t, newTestService(t, faceDetector(), prov, nil))

	recorder := httptest.NewRecorder()
	h.Submit(recorder, multipartRequest(t, "/", "image", testPNG(t, 100, 100), nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	body := recorder.Body.String()
	if !strings.Contains(body, `<div class="info">Unknown</div>`) {
		t.Error("expected Unknown info")
	}
	if !strings.Contains(body, "data:image/jpeg;base64,") {
		t.Error("annotated image should still be shown")
	}
	if len(recorder.Result().Cookies()) != 0 {
		t.Error("failed identification must not be remembered")
	}
}

func TestPageSubmit_EmptyFile(t *testing.T) {
	prov := &stubProvider{info: bradPittInfo}
	h := newTestPageHandler(t, newTestService(t, faceDetector(), prov, nil))

	recorder := httptest.NewRecorder()
	h.Submit(recorder, multipartRequest(t, "/", "image", nil, map[string]string{"question": "ignored"}))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if strings.Contains(recorder.Body.String(), "class=\"info\"") {
		t.Error("empty upload should render the empty page")
	}
	if prov.identifyCall != 0 {
		t.Error("provider must not be called for an empty upload")
	}
}

func TestPageSubmit_UnselectedFileInput(t *testing.T) {
	var body bytes.Buffer
	body.WriteString("--XYZ\r\n" +
		"Content-Disposition: form-data; name=\"image\"; filename=\"\"\r\n" +
		"Content-Type: application/octet-stream\r\n\r\n\r\n" +
		"--XYZ--\r\n")
	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=XYZ")

	prov := &stubProvider{info: bradPittInfo}
	h := newTestPageHandler(t, newTestService(t, faceDetector(), prov, nil))
	recorder := httptest.NewRecorder()
	h.Submit(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if prov.identifyCall != 0 {
		t.Error("provider must not be called without a file")
	}
}

func TestPageSubmit_AnswersQuestion(t *testing.T) {
	prov := &stubProvider{answer: "He was born in 1963."}
	h := newTestPageHandler(t, newTestService(t, faceDetector(), prov, nil))

	recorder := httptest.NewRecorder()
	h.Submit(recorder, postQuestion(url.Values{
		"celeb_name":      {"Brad Pitt"},
		"celeb_info":      {bradPittInfo},
		"result_img_data": {"aGVsbG8="},
		"question":        {"When was he born?"},
	}))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	body := recorder.Body.String()
	for _, want := range []string{
		"He was born in 1963.",
		"When was he born?",
		`src="data:image/jpeg;base64,aGVsbG8="`,
		"-**Profession**: Actor",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("response missing %q", want)
		}
	}
	if prov.lastName != "Brad Pitt" || prov.lastQuestion != "When was he born?" {
		t.Errorf("provider got name=%q question=%q", prov.lastName, prov.lastQuestion)
	}
}

func TestPageSubmit_InvalidImageDataDropped(t *testing.T) {
	h := newTestPageHandler(t, newTestService(t, faceDetector(), &stubProvider{answer: "yes"}, nil))

	recorder := httptest.NewRecorder()
	h.Submit(recorder, postQuestion(url.Values{
		"celeb_name":      {"Brad Pitt"},
		"celeb_info":      {bradPittInfo},
		"result_img_data": {"not-base64!!"},
		"question":        {"Is he an actor?"},
	}))

	body := recorder.Body.String()
	if strings.Contains(body, "data:image/jpeg;base64,") {
		t.Error("invalid image data must not be rendered")
	}
	if !strings.Contains(body, "yes") {
		t.Error("answer should still be rendered")
	}
}

func TestPageSubmit_AskFailureFallback(t *testing.T) {
	h := newTestPageHandler(t, newTestService(t, faceDetector(), &stubProvider{err: errors.New("boom")}, nil))

	recorder := httptest.NewRecorder()
	h.Submit(recorder, postQuestion(url.Values{
		"celeb_name": {"Brad Pitt"},
		"question":   {"Where does he live?"},
	}))

	// html/template escapes the apostrophe.
	want := strings.ReplaceAll(constants.AnswerNotFound, "'", "&#39;")
	if !strings.Contains(recorder.Body.String(), want) {
		t.Errorf("expected fallback answer, got %s", recorder.Body.String())
	}
}

func TestPageSubmit_EmptyQuestion(t *testing.T) {
	prov := &stubProvider{answer: "unused"}
	h := newTestPageHandler(t, newTestService(t, faceDetector(), prov, nil))

	recorder := httptest.NewRecorder()
	h.Submit(recorder, postQuestion(url.Values{
		"celeb_name": {"Brad Pitt"},
		"question":   {"   "},
	}))

	if !strings.Contains(recorder.Body.String(), "Please enter a question.") {
		t.Error("expected empty-question error")
	}
	if prov.lastQuestion != "" {
		t.Error("provider must not be called for an empty question")
	}
}

func TestPageSubmit_EscapesProviderOutput(t *testing.T) {
	prov := &stubProvider{info: "-**Full Name**: <script>alert(1)</script>"}
	h := newTestPageHandler(t, newTestService(t, faceDetector(), prov, nil))

	recorder := httptest.NewRecorder()
	h.Submit(recorder, multipartRequest(t, "/", "image", testPNG(t, 100, 100), nil))

	if strings.Contains(recorder.Body.String(), "<script>alert(1)</script>") {
		t.Error("provider output must be escaped")
	}
}

func TestPageSubmit_TooLarge(t *testing.T) {
	h := newTestPageHandler(t, newTestService(t, faceDetector(), &stubProvider{}, nil))

	big := bytes.Repeat([]byte{0xff}, constants.MaxUploadSize+1024)
	recorder := httptest.NewRecorder()
	h.Submit(recorder, multipartRequest(t, "/", "image", big, nil))

	if recorder.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "too large") {
		t.Error("expected too-large message")
	}
}

func TestPageSubmit_NoFields(t *testing.T) {
	h := newTestPageHandler(t, newTestService(t, faceDetector(), &stubProvider{}, nil))

	recorder := httptest.NewRecorder()
	h.Submit(recorder, postQuestion(url.Values{"other": {"x"}}))

	if recorder.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", recorder.Code)
	}
}

func TestPageClearRecent(t *testing.T) {
	h := newTestPageHandler(t, newTestService(t, faceDetector(), &stubProvider{info: bradPittInfo}, nil))

	first := httptest.NewRecorder()
	h.Submit(first, multipartRequest(t, "/", "image", testPNG(t, 100, 100), nil))
	if !strings.Contains(first.Body.String(), `action="/recent/clear"`) {
		t.Error("expected a clear button next to recent lookups")
	}

	recorder := httptest.NewRecorder()
	h.ClearRecent(recorder, httptest.NewRequest(http.MethodPost, "/recent/clear", nil))

	if recorder.Code != http.StatusSeeOther {
		t.Errorf("expected status 303, got %d", recorder.Code)
	}
	if loc := recorder.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %q", loc)
	}

	cookies := recorder.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != first.Result().Cookies()[0].Name || cookies[0].MaxAge >= 0 {
		t.Errorf("expected the recent-lookups cookie to be expired, got %+v", cookies)
	}
}

func TestPageTooManyRequests(t *testing.T) {
	h := newTestPageHandler(t, newTestService(t, faceDetector(), &stubProvider{}, nil))

	recorder := httptest.NewRecorder()
	h.TooManyRequests(recorder, httptest.NewRequest(http.MethodPost, "/", nil))

	if recorder.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", recorder.Code)
	}
	if ct := recorder.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected html, got %q", ct)
	}
	if !strings.Contains(recorder.Body.String(), "Too many requests") {
		t.Error("expected rate limit message")
	}
}
