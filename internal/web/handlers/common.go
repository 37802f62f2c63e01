package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/kozaktomas/celebrity-detector/internal/constants"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

var (
	errNoImage       = errors.New("no image uploaded")
	errImageTooLarge = fmt.Errorf("image exceeds %d MB", constants.MaxUploadSize>>20)
)

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// parseUploadForm parses a form body capped at MaxUploadSize. Multipart and
// url-encoded bodies are both accepted.
func parseUploadForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(constants.MaxUploadSize)
	} else {
		err = r.ParseForm()
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errImageTooLarge
	}
	return err
}

// readUpload returns the bytes of the multipart file field. A missing or empty
// file yields errNoImage.
func readUpload(r *http.Request, field string) ([]byte, error) {
	if r.MultipartForm == nil {
		return nil, errNoImage
	}
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, errNoImage
	}
	if err != nil {
		return nil, fmt.Errorf("reading form file: %w", err)
	}
	defer file.Close()
	return readAll(file)
}

func readAll(file multipart.File) ([]byte, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return nil, errNoImage
	}
	return data, nil
}

// hasUpload reports whether the form carried the file field at all. Browsers send an
// unselected file input as a part with an empty filename, which the multipart reader
// files under Value rather than File.
func hasUpload(r *http.Request, field string) bool {
	if r.MultipartForm == nil {
		return false
	}
	if _, ok := r.MultipartForm.File[field]; ok {
		return true
	}
	_, ok := r.MultipartForm.Value[field]
	return ok
}
