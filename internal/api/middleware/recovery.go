package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/blackjack-go/internal/api/apierr"
	"github.com/mcoot/blackjack-go/internal/middleware"
)

// Recovery creates panic recovery middleware for the API
// Returns JSON error responses on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

// Logging logs API requests with a request id
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("component", "api")))
}

// Signing signs JSON responses when secret is set
func Signing(secret string) func(http.Handler) http.Handler {
	return middleware.Signing(secret)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
