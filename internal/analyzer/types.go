package analyzer

import (
	"encoding/json"
	"net/http"
	"time"
)

// Status tags which variant a Result holds.
type Status string

// Result variants.
const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// HeadingCounts holds the number of h1..h6 elements in a document.
type HeadingCounts struct {
	H1 int `json:"h1"`
	H2 int `json:"h2"`
	H3 int `json:"h3"`
	H4 int `json:"h4"`
	H5 int `json:"h5"`
	H6 int `json:"h6"`
}

// LinkInfo tallies anchors by LinkKind.
type LinkInfo struct {
	Internal     int `json:"internal"`
	External     int `json:"external"`
	Inaccessible int `json:"inaccessible"`
}

// Result is the outcome of analyzing one URL. Fields other than Status and
// Error are only meaningful when Status is StatusSuccess.
type Result struct {
	Status        Status
	Version       string
	Title         *string
	HeadingCounts HeadingCounts
	LinkInfo      LinkInfo
	LoginForm     bool
	Error         string
}

// Failure builds a failure Result carrying msg.
func Failure(msg string) Result {
	return Result{Status: StatusFailure, Error: msg}
}

type successBody struct {
	Status        Status        `json:"status"`
	Version       string        `json:"version"`
	Title         *string       `json:"title"`
	HeadingCounts HeadingCounts `json:"heading_counts"`
	LinkInfo      LinkInfo      `json:"link_info"`
	LoginForm     bool          `json:"login_form"`
}

type failureBody struct {
	Status Status `json:"status"`
	Error  string `json:"error"`
}

// MarshalJSON renders only the fields of the active variant.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Status == StatusFailure {
		return json.Marshal(failureBody{Status: r.Status, Error: r.Error})
	}
	return json.Marshal(successBody{
		Status:        StatusSuccess,
		Version:       r.Version,
		Title:         r.Title,
		HeadingCounts: r.HeadingCounts,
		LinkInfo:      r.LinkInfo,
		LoginForm:     r.LoginForm,
	})
}

// FetchResponse is the raw page returned by a Fetcher.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}
