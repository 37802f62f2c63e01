package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/celebrity-detector/internal/ai"
	"github.com/kozaktomas/celebrity-detector/internal/celebrity"
	"github.com/kozaktomas/celebrity-detector/internal/constants"
	"github.com/kozaktomas/celebrity-detector/internal/database"
	"github.com/kozaktomas/celebrity-detector/internal/facedetect"
	"github.com/kozaktomas/celebrity-detector/internal/logging"
)

// APIHandler serves the JSON API.
type APIHandler struct {
	service *celebrity.Service
	logger  logrus.FieldLogger
}

func NewAPIHandler(service *celebrity.Service, logger logrus.FieldLogger) *APIHandler {
	return &APIHandler{service: service, logger: logger}
}

// IdentifyResponse is returned by POST /identify.
type IdentifyResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Info         string          `json:"info"`
	FaceDetected bool            `json:"face_detected"`
	Face         *facedetect.Box `json:"face,omitempty"`
	Cached       bool            `json:"cached"`
	Image        string          `json:"image,omitempty"` // base64 annotated JPEG
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Name     string `json:"name"`
	Question string `json:"question"`
}

type AskResponse struct {
	Name     string `json:"name"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type HistoryIdentification struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Info      string         `json:"info"`
	Face      facedetect.Box `json:"face"`
	ImageSHA1 string         `json:"image_sha1"`
	Provider  string         `json:"provider"`
	Cached    bool           `json:"cached"`
	CreatedAt time.Time      `json:"created_at"`
}

type HistoryQuestion struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Answered  bool      `json:"answered"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

type HistoryResponse struct {
	Identifications []HistoryIdentification `json:"identifications"`
	Questions       []HistoryQuestion       `json:"questions"`
}

type HealthResponse struct {
	Status   string   `json:"status"`
	Provider string   `json:"provider"`
	History  bool     `json:"history"`
	Usage    ai.Usage `json:"usage"`
}

// Health reports liveness plus the active provider and its token usage.
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Provider: h.service.ProviderName(),
		History:  h.service.HistoryEnabled(),
		Usage:    h.service.Usage(),
	})
}

// Identify handles POST /identify with a multipart "image" field.
func (h *APIHandler) Identify(w http.ResponseWriter, r *http.Request) {
	if err := parseUploadForm(w, r); err != nil {
		if errors.Is(err, errImageTooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	image, err := readUpload(r, "image")
	if errors.Is(err, errNoImage) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	ident, err := h.service.Identify(r.Context(), image)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	resp := IdentifyResponse{
		ID:           ident.ID,
		Name:         ident.Name,
		Info:         ident.Info,
		FaceDetected: ident.FaceDetected,
		Face:         ident.Face,
		Cached:       ident.Cached,
	}
	if ident.FaceDetected {
		resp.Image = base64.StdEncoding.EncodeToString(ident.Image)
	}
	respondJSON(w, http.StatusOK, resp)
}

// Ask handles POST /ask.
func (h *APIHandler) Ask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	answer, err := h.service.Ask(r.Context(), req.Name, req.Question)
	if errors.Is(err, celebrity.ErrEmptyQuestion) {
		respondError(w, http.StatusBadRequest, "question is required")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, AskResponse{Name: req.Name, Question: req.Question, Answer: answer})
}

// History handles GET /history?name=&limit=.
func (h *APIHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := constants.DefaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, constants.MaxHistoryLimit)
	}

	hist, err := h.service.History(r.Context(), r.URL.Query().Get("name"), limit)
	if errors.Is(err, celebrity.ErrHistoryDisabled) {
		respondError(w, http.StatusServiceUnavailable, "lookup history is not configured")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, historyResponse(hist))
}

func historyResponse(hist *celebrity.History) HistoryResponse {
	resp := HistoryResponse{
		Identifications: make([]HistoryIdentification, 0, len(hist.Identifications)),
		Questions:       make([]HistoryQuestion, 0, len(hist.Questions)),
	}
	for _, rec := range hist.Identifications {
		resp.Identifications = append(resp.Identifications, toHistoryIdentification(rec))
	}
	for _, rec := range hist.Questions {
		resp.Questions = append(resp.Questions, HistoryQuestion{
			ID:        rec.ID,
			Name:      rec.Name,
			Question:  rec.Question,
			Answer:    rec.Answer,
			Answered:  rec.Answered,
			Provider:  rec.Provider,
			CreatedAt: rec.CreatedAt,
		})
	}
	return resp
}

func toHistoryIdentification(rec database.IdentificationRecord) HistoryIdentification {
	return HistoryIdentification{
		ID:   rec.ID,
		Name: rec.Name,
		Info: rec.Info,
		Face: facedetect.Box{
			X: rec.FaceX, Y: rec.FaceY, Width: rec.FaceWidth, Height: rec.FaceHeight,
		},
		ImageSHA1: rec.ImageSHA1,
		Provider:  rec.Provider,
		Cached:    rec.Cached,
		CreatedAt: rec.CreatedAt,
	}
}

func (h *APIHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.WithError(err).WithFields(logrus.Fields{
		"request_id": logging.RequestID(r.Context()),
		"path":       sanitizeForLog(r.URL.Path),
	}).Error("api request failed")
	respondError(w, http.StatusInternalServerError, "internal server error")
}
