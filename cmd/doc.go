// Package cmd defines the pageinfo command line.
//
// Architecture overview:
//   - HTTP API: internal/api.Server answers GET /?url=<page> on port 8888. The handler looks the raw URL up in the
//     cache under "scrape-url-<url>" and replays stored bytes on a hit. On a miss it analyzes the page, stores the
//     JSON body for 24 hours and returns it. Fetch failures are ordinary 200 responses and are cached too.
//   - Analysis: internal/analyzer fetches through the Colly-based fetcher and inspects the document with goquery:
//     doctype label, title, h1..h6 counts, internal/external/inaccessible links and password-form detection.
//   - Cache: Redis via go-redis (REDIS_HOST/REDIS_PORT) by default, or an in-process TTL map for local runs. Cache
//     errors are logged and counted but never fail a request.
//   - Admin: /healthz, /readyz and /metrics are served on a separate port (admin.port, 0 disables).
//   - Configuration & plumbing: Viper populates config from defaults, an optional file and PAGEINFO_* env vars; zap
//     provides structured logging; Prometheus counters/histograms track requests, cache lookups, analyses and
//     fetches.
//
// Quick checklist:
//   - Run locally: go run . serve (needs Redis on localhost:6379) or
//     PAGEINFO_CACHE_BACKEND=memory go run . serve.
//   - Query: curl 'http://localhost:8888/?url=https://example.com'.
//   - SIGINT/SIGTERM drain in-flight requests for server.shutdown_timeout before exit.
package cmd
