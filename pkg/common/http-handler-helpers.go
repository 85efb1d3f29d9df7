package common

import (
	"net/http"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// JsonHandler wraps fn with CORS preflight handling, a session cookie and a
// JSON content type. Errors returned by fn are logged.
func JsonHandler(logger *zap.Logger, fn func(w http.ResponseWriter, r *http.Request, sessionId string) error) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			RespondToOptions(w, r)
			return
		}
		sessionId := HandleSessionCookie(w, r)
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Content-Type", "application/json")

		if err := fn(w, r, sessionId); err != nil {
			logger.Error("error handling request", zap.String("path", r.URL.Path), zap.String("session", sessionId), zap.Error(err))
		}
	}
}

// WriteJson encodes v as the response body.
func WriteJson(w http.ResponseWriter, status int, v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, "could not encode response", http.StatusInternalServerError)
		return err
	}
	w.WriteHeader(status)
	_, err = w.Write(data)
	return err
}

// WriteError responds with {"error": message}.
func WriteError(w http.ResponseWriter, status int, message string) error {
	return WriteJson(w, status, map[string]string{"error": message})
}

func RespondToOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Age", "0")
	w.WriteHeader(http.StatusAccepted)
}
