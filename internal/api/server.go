package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/pageinfo/internal/analyzer"
	"github.com/JakeFAU/pageinfo/internal/cache"
	"github.com/JakeFAU/pageinfo/internal/metrics"
)

// Analyzer produces the summary for one URL.
type Analyzer interface {
	Analyze(ctx context.Context, url string) analyzer.Result
}

// IDGenerator produces request IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// Options tunes the public router.
type Options struct {
	CachePrefix    string
	CacheTTL       time.Duration
	RequestTimeout time.Duration
}

// Server wires the cache-or-analyze flow to HTTP.
type Server struct {
	router   chi.Router
	analyzer Analyzer
	cache    cache.Store
	opts     Options
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	pageAnalyzer Analyzer,
	store cache.Store,
	idGen IDGenerator,
	opts Options,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CachePrefix == "" {
		opts.CachePrefix = cache.DefaultPrefix
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = cache.DefaultTTL
	}
	s := &Server{
		analyzer: pageAnalyzer,
		cache:    store,
		opts:     opts,
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware(idGen, logger))
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)
	if opts.RequestTimeout > 0 {
		r.Use(timeoutMiddleware(opts.RequestTimeout))
	}

	r.Get("/", s.scrape)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// scrape serves GET /?url=. Cached bytes are replayed verbatim; on a miss the
// page is analyzed and the encoded result cached for the configured TTL.
// Analysis failures are ordinary 200 responses. Cache errors never fail the
// request.
func (s *Server) scrape(w http.ResponseWriter, r *http.Request) {
	raw, ok := lastQueryValue(r.URL.RawQuery, "url")
	if !ok {
		writeError(w, http.StatusBadRequest, "missing argument url")
		return
	}
	target := strings.TrimSpace(raw)
	key := cache.Key(s.opts.CachePrefix, target)
	logger := s.logger.With(zap.String("url", target), zap.String("request_id", requestIDFrom(r.Context())))

	cached, err := s.cache.Get(r.Context(), key)
	switch {
	case err == nil:
		metrics.ObserveCacheLookup(metrics.CacheHit)
		logger.Debug("cache hit")
		writeBody(w, http.StatusOK, cached)
		return
	case errors.Is(err, cache.ErrMiss):
		metrics.ObserveCacheLookup(metrics.CacheMiss)
	default:
		metrics.ObserveCacheLookup(metrics.CacheError)
		metrics.ObserveCacheError("get")
		logger.Warn("cache lookup failed, analyzing without cache", zap.Error(err))
	}

	// A client hanging up must not turn into a cached fetch failure.
	result := s.analyzer.Analyze(context.WithoutCancel(r.Context()), target)
	metrics.ObserveAnalysis(string(result.Status))

	body, err := json.Marshal(result)
	if err != nil {
		logger.Error("encode result failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := s.cache.Set(context.WithoutCancel(r.Context()), key, body, s.opts.CacheTTL); err != nil {
		metrics.ObserveCacheError("set")
		logger.Warn("cache store failed, serving uncached result", zap.Error(err))
	}
	writeBody(w, http.StatusOK, body)
}

// lastQueryValue returns the last value of key in rawQuery. Unlike
// url.ParseQuery it keeps pairs containing ';' and leaves malformed
// percent-escapes as literal text. A key without '=' has an empty value.
func lastQueryValue(rawQuery, key string) (string, bool) {
	var (
		value string
		found bool
	)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		if unescapeQuery(k) != key {
			continue
		}
		value, found = unescapeQuery(v), true
	}
	return value, found
}

// unescapeQuery decodes '+' and valid %XX escapes and keeps anything else.
func unescapeQuery(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		zap.L().Debug("write body failed", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
