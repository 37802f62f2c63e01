package handlers

import (
	"embed"
	"encoding/base64"
	"errors"
	"html/template"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/celebrity-detector/internal/celebrity"
	"github.com/kozaktomas/celebrity-detector/internal/constants"
	"github.com/kozaktomas/celebrity-detector/internal/logging"
	"github.com/kozaktomas/celebrity-detector/internal/web/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// pageData is everything the index template renders. Zero value is the empty page.
type pageData struct {
	CelebInfo     string
	CelebName     string
	ResultImgData string // base64 JPEG, echoed back through a hidden field
	UserQuestion  string
	Answer        string
	Error         string
	Recent        []string
	Provider      string
}

// ImageURL returns the data URL of the annotated photo.
func (d pageData) ImageURL() template.URL {
	if d.ResultImgData == "" {
		return ""
	}
	// ResultImgData is validated base64 at this point.
	return template.URL("data:image/jpeg;base64," + d.ResultImgData)
}

// PageHandler serves the single HTML page: upload form, result and question form.
type PageHandler struct {
	service *celebrity.Service
	recent  *middleware.RecentLookups
	logger  logrus.FieldLogger
}

func NewPageHandler(service *celebrity.Service, recent *middleware.RecentLookups, logger logrus.FieldLogger) *PageHandler {
	return &PageHandler{service: service, recent: recent, logger: logger}
}

// Show renders the empty page.
func (h *PageHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageData{Recent: h.recent.Names(r)})
}

// Submit handles both forms: a photo upload or a follow-up question.
func (h *PageHandler) Submit(w http.ResponseWriter, r *http.Request) {
	data := pageData{Recent: h.recent.Names(r)}

	if err := parseUploadForm(w, r); err != nil {
		if errors.Is(err, errImageTooLarge) {
			data.Error = "The image is too large. Please upload a file under 20 MB."
			h.render(w, r, http.StatusRequestEntityTooLarge, data)
			return
		}
		data.Error = "Invalid form submission."
		h.render(w, r, http.StatusBadRequest, data)
		return
	}

	switch {
	case hasUpload(r, "image"):
		h.identify(w, r, data)
	case r.PostForm.Has("question"):
		h.ask(w, r, data)
	default:
		h.render(w, r, http.StatusOK, data)
	}
}

// ClearRecent forgets the visitor's recent lookups and goes back to the page.
func (h *PageHandler) ClearRecent(w http.ResponseWriter, r *http.Request) {
	h.recent.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// TooManyRequests renders the page with a rate limit message.
func (h *PageHandler) TooManyRequests(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusTooManyRequests, pageData{
		Error:  "Too many requests. Please wait a moment and try again.",
		Recent: h.recent.Names(r),
	})
}

func (h *PageHandler) identify(w http.ResponseWriter, r *http.Request, data pageData) {
	image, err := readUpload(r, "image")
	if errors.Is(err, errNoImage) {
		h.render(w, r, http.StatusOK, data)
		return
	}
	if err != nil {
		h.fail(w, r, data, err)
		return
	}

	ident, err := h.service.Identify(r.Context(), image)
	if err != nil {
		h.fail(w, r, data, err)
		return
	}

	data.CelebInfo = ident.Info
	data.CelebName = ident.Name
	if ident.FaceDetected {
		data.ResultImgData = base64.StdEncoding.EncodeToString(ident.Image)
	}
	if ident.Name != "" && ident.Name != constants.UnknownCelebrity {
		data.Recent = h.recent.Add(w, r, ident.Name)
	}
	h.render(w, r, http.StatusOK, data)
}

func (h *PageHandler) ask(w http.ResponseWriter, r *http.Request, data pageData) {
	data.CelebName = r.PostFormValue("celeb_name")
	data.CelebInfo = r.PostFormValue("celeb_info")
	data.UserQuestion = r.PostFormValue("question")
	data.ResultImgData = validImageData(r.PostFormValue("result_img_data"))

	answer, err := h.service.Ask(r.Context(), data.CelebName, data.UserQuestion)
	if errors.Is(err, celebrity.ErrEmptyQuestion) {
		data.Error = "Please enter a question."
		h.render(w, r, http.StatusOK, data)
		return
	}
	if err != nil {
		h.fail(w, r, data, err)
		return
	}

	data.Answer = answer
	h.render(w, r, http.StatusOK, data)
}

// validImageData keeps a posted-back image only when it is well-formed base64.
func validImageData(s string) string {
	if s == "" {
		return ""
	}
	if _, err := base64.StdEncoding.DecodeString(s); err != nil {
		return ""
	}
	return s
}

func (h *PageHandler) fail(w http.ResponseWriter, r *http.Request, data pageData, err error) {
	h.logger.WithError(err).WithField("request_id", logging.RequestID(r.Context())).Error("page request failed")
	data.Error = "Something went wrong while processing your request."
	h.render(w, r, http.StatusInternalServerError, data)
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	data.Provider = h.service.ProviderName()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.WithError(err).WithField("path", sanitizeForLog(r.URL.Path)).Error("rendering page")
	}
}
