package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/kozaktomas/celebrity-detector/internal/constants"
)

const (
	recentCookieName = "celebrity_recent"
	recentDuration   = 30 * 24 * time.Hour
)

// RecentLookups keeps the last identified celebrity names in a signed cookie.
// Nothing is stored server side.
type RecentLookups struct {
	secret []byte
}

func NewRecentLookups(secret string) *RecentLookups {
	if secret == "" {
		secret = "default_secret"
	}
	return &RecentLookups{secret: []byte(secret)}
}

// Names returns the names stored in the request cookie, most recent first.
// A missing, malformed or tampered cookie yields nil.
func (rl *RecentLookups) Names(r *http.Request) []string {
	cookie, err := r.Cookie(recentCookieName)
	if err != nil {
		return nil
	}
	payload, signature, ok := strings.Cut(cookie.Value, ".")
	if !ok || !rl.verifySignature(payload, signature) {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil
	}
	if len(names) > constants.RecentLookupsLimit {
		names = names[:constants.RecentLookupsLimit]
	}
	return names
}

// Add puts name at the front of the list (dropping an older duplicate), writes the
// cookie and returns the updated list.
func (rl *RecentLookups) Add(w http.ResponseWriter, r *http.Request, name string) []string {
	name = strings.TrimSpace(name)
	names := rl.Names(r)
	if name == "" {
		return names
	}

	names = slices.DeleteFunc(names, func(n string) bool { return strings.EqualFold(n, name) })
	names = append([]string{name}, names...)
	if len(names) > constants.RecentLookupsLimit {
		names = names[:constants.RecentLookupsLimit]
	}

	raw, err := json.Marshal(names)
	if err != nil {
		return names
	}
	payload := base64.RawURLEncoding.EncodeToString(raw)

	http.SetCookie(w, &http.Cookie{
		Name:     recentCookieName,
		Value:    payload + "." + rl.signData(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(recentDuration.Seconds()),
	})
	return names
}

// Clear removes the cookie.
func (rl *RecentLookups) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     recentCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// signData creates an HMAC signature for data
func (rl *RecentLookups) signData(data string) string {
	h := hmac.New(sha256.New, rl.secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// verifySignature verifies an HMAC signature
func (rl *RecentLookups) verifySignature(data, signature string) bool {
	expected := rl.signData(data)
	return hmac.Equal([]byte(signature), []byte(expected))
}
