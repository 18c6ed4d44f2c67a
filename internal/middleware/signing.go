package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
)

// SignatureHeader carries the HMAC of the response body
const SignatureHeader = "X-Signature"

// signingWriter holds the response back until the body is complete
type signingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (sw *signingWriter) WriteHeader(status int) {
	sw.status = status
}

func (sw *signingWriter) Write(b []byte) (int, error) {
	return sw.body.Write(b)
}

// Sign computes the X-Signature value for body under secret
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches body under secret
func Verify(secret, body []byte, signature string) bool {
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}

// Signing adds an X-Signature header to every response. It buffers the body,
// so it must not wrap streaming endpoints. An empty secret disables it.
func Signing(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		if len(key) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &signingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			w.Header().Set(SignatureHeader, Sign(key, sw.body.Bytes()))
			w.WriteHeader(sw.status)
			_, _ = w.Write(sw.body.Bytes())
		})
	}
}
