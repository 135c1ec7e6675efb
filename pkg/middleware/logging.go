package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/bankcrm/pkg/composables"
	"github.com/iota-uz/bankcrm/pkg/configuration"
)

type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func getRealIP(r *http.Request, conf *configuration.Configuration) string {
	if v := r.Header.Get(conf.RealIPHeader); v != "" {
		return v
	}
	return r.RemoteAddr
}

func getRequestID(r *http.Request, conf *configuration.Configuration) string {
	if v := r.Header.Get(conf.RequestIDHeader); v != "" {
		return v
	}
	return uuid.New().String()
}

// WithLogger attaches a per-request logger to the context, recovers panics
// and logs request completion with status and duration.
func WithLogger(logger *logrus.Logger) mux.MiddlewareFunc {
	conf := configuration.Use()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := getRequestID(r, conf)

			fieldsLogger := logger.WithFields(logrus.Fields{
				"request-id": requestID,
				"path":       r.URL.Path,
				"method":     r.Method,
				"ip":         getRealIP(r, conf),
			})

			w.Header().Set(conf.RequestIDHeader, requestID)
			ww := &statusWriter{ResponseWriter: w}
			ctx := composables.WithLogger(r.Context(), fieldsLogger)

			defer func() {
				if recovered := recover(); recovered != nil {
					fieldsLogger.WithFields(logrus.Fields{
						"panic": recovered,
						"stack": string(debug.Stack()),
					}).Error("panic recovered in request handler")
					if !ww.written {
						http.Error(ww, "Internal Server Error", http.StatusInternalServerError)
					}
				}
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))

			fieldsLogger.WithFields(logrus.Fields{
				"status-code": ww.Status(),
				"duration":    time.Since(start),
			}).Info("request completed")
		})
	}
}
