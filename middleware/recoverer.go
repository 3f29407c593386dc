package middleware

import (
	"net/http"
	"runtime/debug"

	"taskhub/logging"
	"taskhub/response"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

func RequestID(r *http.Request) string {
	return chimiddleware.GetReqID(r.Context())
}

// Recoverer turns a panic into the generic 500 envelope and logs the stack.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			logging.Logger.WithFields(logrus.Fields{
				"request_id": RequestID(r),
				"method":     r.Method,
				"path":       r.URL.Path,
				"panic":      rvr,
				"stack":      string(debug.Stack()),
			}).Error("Recovered from panic")

			response.Error(w, http.StatusInternalServerError, "Internal server error")
		}()

		next.ServeHTTP(w, r)
	})
}

// RequestIDHeader echoes the chi request ID back to the client.
func RequestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := RequestID(r); id != "" {
			w.Header().Set("X-Request-Id", id)
		}
		next.ServeHTTP(w, r)
	})
}
