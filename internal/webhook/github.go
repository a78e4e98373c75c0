package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/msoria/hookfetch/internal/event"
	"github.com/msoria/hookfetch/internal/metrics"
)

// PushEventHandler is called with the verified, parsed push event. The
// returned value is serialized as the JSON response body.
type PushEventHandler func(ctx context.Context, ev *event.PushEvent) (any, error)

// PushHandler handles GitHub push webhook requests.
type PushHandler struct {
	secret  string
	handler PushEventHandler
}

// NewPushHandler creates a new push webhook handler.
func NewPushHandler(secret string, handler PushEventHandler) *PushHandler {
	return &PushHandler{
		secret:  secret,
		handler: handler,
	}
}

// ServeHTTP implements http.Handler.
func (h *PushHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	metrics.WebhookReceived()

	// The signature covers the exact bytes on the wire, so the body must
	// be read before any parsing.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	signature := r.Header.Get("X-Hub-Signature-256")
	if signature == "" {
		metrics.SignatureFailure()
		writeError(w, http.StatusForbidden, "missing signature")
		return
	}

	if !ValidSignature(body, signature, h.secret) {
		metrics.SignatureFailure()
		writeError(w, http.StatusForbidden, "invalid signature")
		return
	}

	if eventType := r.Header.Get("X-GitHub-Event"); eventType != "" && eventType != "push" {
		writeError(w, http.StatusBadRequest, "not a push event")
		return
	}

	ev, err := event.ParsePush(body)
	if err != nil {
		if errors.Is(err, event.ErrNotPush) {
			writeError(w, http.StatusBadRequest, "not a push event")
		} else {
			writeError(w, http.StatusBadRequest, "malformed payload")
		}
		return
	}

	result, err := h.handler(r.Context(), ev)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	metrics.WebhookProcessed()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// ValidSignature verifies an X-Hub-Signature-256 header value against the
// raw request body: sha256=<hex HMAC-SHA256 of body keyed with secret>.
// Comparison is constant time.
func ValidSignature(payload []byte, signature, secret string) bool {
	if !strings.HasPrefix(signature, "sha256=") {
		return false
	}

	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "sha256="))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := mac.Sum(nil)

	return hmac.Equal(sig, expected)
}

// writeError writes a short JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
