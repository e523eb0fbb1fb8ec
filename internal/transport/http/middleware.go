package httptransport

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"wager-pool/internal/logging"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

// APILogMiddleware emits one JSON line per request through the shared log
// sink, tagged with the community and member named in the route.
func APILogMiddleware() func(http.Handler) http.Handler {
	logger := slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{}))
	return httplog.RequestLogger(logger, &httplog.Options{
		Level:              slog.LevelInfo,
		Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
		LogRequestBody:     func(*http.Request) bool { return false },
		LogResponseBody:    func(*http.Request) bool { return false },
		LogRequestHeaders:  []string{},
		LogResponseHeaders: []string{},
		LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
			attrs := []slog.Attr{
				slog.String("request_id", chimw.GetReqID(req.Context())),
				slog.String("method", req.Method),
				slog.String("route", routePattern(req)),
			}
			if c := chi.URLParam(req, "community"); c != "" {
				attrs = append(attrs, slog.String("community", c))
			}
			if m := chi.URLParam(req, "member"); m != "" {
				attrs = append(attrs, slog.String("member", m))
			}
			return attrs
		},
	})
}

// BodyCaptureMiddleware adds the first limit bytes of the request and
// response bodies to the request log line.
func BodyCaptureMiddleware(limit int) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = 4096
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqBuf := &cappedBuffer{limit: limit}
			if r.Body != nil {
				r.Body = readCloser{Reader: io.TeeReader(r.Body, reqBuf), Closer: r.Body}
			}
			cw := &captureWriter{ResponseWriter: w, buf: cappedBuffer{limit: limit}}
			next.ServeHTTP(cw, r)

			httplog.SetAttrs(r.Context(), slog.Any("request_body", parseMaybeJSON(reqBuf.Bytes())))
			httplog.SetAttrs(r.Context(), slog.Any("response_body", parseMaybeJSON(cw.buf.Bytes())))
			if reqBuf.truncated || cw.buf.truncated {
				httplog.SetAttrs(r.Context(), slog.Bool("body_truncated", true))
			}
		})
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}

// cappedBuffer keeps at most limit bytes and silently discards the rest.
type cappedBuffer struct {
	bytes.Buffer
	limit     int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	remain := b.limit - b.Len()
	if remain < len(p) {
		b.truncated = true
		if remain > 0 {
			b.Buffer.Write(p[:remain])
		}
		return len(p), nil
	}
	return b.Buffer.Write(p)
}

type captureWriter struct {
	http.ResponseWriter
	buf cappedBuffer
}

func (c *captureWriter) Write(p []byte) (int, error) {
	_, _ = c.buf.Write(p)
	return c.ResponseWriter.Write(p)
}

func parseMaybeJSON(b []byte) any {
	if len(b) == 0 {
		return ""
	}
	var out any
	if err := json.Unmarshal(b, &out); err == nil {
		return out
	}
	return string(b)
}

// AdminAuthMiddleware rejects requests that do not present adminKey. An empty
// key leaves the routes open, which is only meant for local runs.
func AdminAuthMiddleware(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey != "" && !CheckAdminAuth(r, adminKey) {
				WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CheckAdminAuth accepts the key from X-Admin-Key or a bearer token.
func CheckAdminAuth(r *http.Request, adminKey string) bool {
	presented := r.Header.Get("X-Admin-Key")
	if presented == "" {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			return false
		}
		presented = token
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(adminKey)) == 1
}
