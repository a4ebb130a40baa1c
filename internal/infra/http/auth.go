package http

import (
	"crypto/ed25519"
	"encoding/base64"
	"net/http"
	"strings"

	"registryd/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	headerKey       = "X-Registry-Key"
	headerSignature = "X-Registry-Signature"
)

// SigningPayload is what a caller signs for a mutating request. Method and
// path are part of the payload so a signature cannot be replayed against a
// different route.
func SigningPayload(method, path string, body []byte) []byte {
	payload := make([]byte, 0, len(method)+len(path)+len(body)+2)
	payload = append(payload, method...)
	payload = append(payload, '\n')
	payload = append(payload, path...)
	payload = append(payload, '\n')
	payload = append(payload, body...)
	return payload
}

// SignRequest produces the signature header value for a request.
func SignRequest(priv ed25519.PrivateKey, method, path string, body []byte) string {
	return base64.StdEncoding.EncodeToString(ed25519.Sign(priv, SigningPayload(method, path, body)))
}

// requireCaller authenticates a mutating request and returns the caller
// identity together with the raw body for decoding.
func (s *Server) requireCaller(c *gin.Context) (domain.Identity, []byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_BODY", "unreadable request body")
		return domain.Identity{}, nil, false
	}

	keyHex := strings.TrimSpace(c.GetHeader(headerKey))
	if keyHex == "" {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHENTICATED", "missing "+headerKey+" header")
		return domain.Identity{}, nil, false
	}
	caller, err := domain.ParseIdentity(keyHex)
	if err != nil {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHENTICATED", "malformed caller key")
		return domain.Identity{}, nil, false
	}

	if s.cfg.AuthMode == "none" {
		return caller, body, true
	}

	sig, err := base64.StdEncoding.DecodeString(strings.TrimSpace(c.GetHeader(headerSignature)))
	if err != nil || len(sig) != ed25519.SignatureSize {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHENTICATED", "malformed signature")
		return domain.Identity{}, nil, false
	}
	pub := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(pub, caller[:])
	payload := SigningPayload(c.Request.Method, c.Request.URL.Path, body)
	if !ed25519.Verify(pub, payload, sig) {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHENTICATED", "signature verification failed")
		return domain.Identity{}, nil, false
	}
	return caller, body, true
}
