package analyzer

import "context"

// Fetcher retrieves a page with a single HTTP GET. Any HTTP status counts as
// a response; only transport-level problems are returned as errors.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResponse, error)
}
