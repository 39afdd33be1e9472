package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	resp  FetchResponse
	err   error
	calls int
	urls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (FetchResponse, error) {
	f.calls++
	f.urls = append(f.urls, url)
	if f.err != nil {
		return FetchResponse{}, f.err
	}
	return f.resp, nil
}

func newTestAnalyzer(body string) (*Analyzer, *fakeFetcher) {
	fetcher := &fakeFetcher{resp: FetchResponse{URL: "https://example.com", StatusCode: 200, Body: []byte(body)}}
	return New(fetcher, zap.NewNop()), fetcher
}

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Sample page</title></head>
<body>
  <h1>One</h1><h1>Two</h1>
  <section><h1>Three</h1><h3>Sub</h3></section>
  <a href="#section">jump</a>
  <a href="">empty</a>
  <a href="https://other.example/x">other</a>
  <a href="/local/path">local</a>
  <a href="javascript:void(0)">script</a>
  <a name="anchor-only">no href</a>
  <form action="/login">
    <div><input type="text" name="user"><input type="password" name="pass"></div>
  </form>
</body>
</html>`

func TestAnalyzeSummarizesPage(t *testing.T) {
	t.Parallel()

	a, fetcher := newTestAnalyzer(samplePage)
	result := a.Analyze(context.Background(), "https://example.com")

	require.Equal(t, 1, fetcher.calls)
	require.Equal(t, []string{"https://example.com"}, fetcher.urls)
	require.Equal(t, StatusSuccess, result.Status)
	require.Equal(t, "HTML 5", result.Version)
	require.NotNil(t, result.Title)
	require.Equal(t, "Sample page", *result.Title)
	require.Equal(t, HeadingCounts{H1: 3, H3: 1}, result.HeadingCounts)
	require.Equal(t, LinkInfo{Internal: 3, External: 1, Inaccessible: 1}, result.LinkInfo)
	require.True(t, result.LoginForm)
	require.Empty(t, result.Error)
}

func TestAnalyzeFetchErrorBecomesFailure(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{err: errors.New("dial tcp 127.0.0.1:1: connect: connection refused")}
	result := New(fetcher, nil).Analyze(context.Background(), "http://127.0.0.1:1")

	require.Equal(t, StatusFailure, result.Status)
	require.Equal(t, "Failed to reach URL. dial tcp 127.0.0.1:1: connect: connection refused", result.Error)
}

func TestSummarizeMissingTitleIsNil(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "no title element", body: `<html><body><p>hi</p></body></html>`},
		{name: "empty title element", body: `<html><head><title></title></head></html>`},
		{name: "empty document", body: ``},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, _ := newTestAnalyzer(tt.body)
			result, err := a.Summarize("https://example.com", []byte(tt.body))
			require.NoError(t, err)
			require.Equal(t, StatusSuccess, result.Status)
			require.Nil(t, result.Title)
		})
	}
}

func TestSummarizeUsesFirstTitle(t *testing.T) {
	t.Parallel()

	body := `<html><head><title>First</title></head><body><title>Second</title></body></html>`
	a, _ := newTestAnalyzer(body)
	result, err := a.Summarize("https://example.com", []byte(body))
	require.NoError(t, err)
	require.NotNil(t, result.Title)
	require.Equal(t, "First", *result.Title)
}

func TestSummarizeHeadingCounts(t *testing.T) {
	t.Parallel()

	body := `<html><body><h1>a</h1><div><h1>b</h1></div><h1 hidden>c</h1><h3>d</h3></body></html>`
	a, _ := newTestAnalyzer(body)
	result, err := a.Summarize("https://example.com", []byte(body))
	require.NoError(t, err)
	require.Equal(t, HeadingCounts{H1: 3, H2: 0, H3: 1, H4: 0, H5: 0, H6: 0}, result.HeadingCounts)
}

func TestSummarizeLoginForm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "password inside form", body: `<form><input type="password"></form>`, want: true},
		{name: "no password input", body: `<form><input type="text"></form>`, want: false},
		{name: "password outside form", body: `<div><input type="password"></div>`, want: false},
		{name: "no form at all", body: `<p>nothing</p>`, want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, _ := newTestAnalyzer(tt.body)
			result, err := a.Summarize("https://example.com", []byte(tt.body))
			require.NoError(t, err)
			require.Equal(t, tt.want, result.LoginForm)
		})
	}
}

func TestResultMarshalJSON(t *testing.T) {
	t.Parallel()

	title := "Sample"
	success := Result{
		Status:        StatusSuccess,
		Version:       "HTML 5",
		Title:         &title,
		HeadingCounts: HeadingCounts{H1: 2},
		LinkInfo:      LinkInfo{Internal: 1, External: 2, Inaccessible: 3},
		LoginForm:     true,
	}
	data, err := json.Marshal(success)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"status": "success",
		"version": "HTML 5",
		"title": "Sample",
		"heading_counts": {"h1": 2, "h2": 0, "h3": 0, "h4": 0, "h5": 0, "h6": 0},
		"link_info": {"internal": 1, "external": 2, "inaccessible": 3},
		"login_form": true
	}`, string(data))

	untitled := success
	untitled.Title = nil
	data, err = json.Marshal(untitled)
	require.NoError(t, err)
	require.Contains(t, string(data), `"title":null`)

	data, err = json.Marshal(Failure("Failed to reach URL. boom"))
	require.NoError(t, err)
	require.Equal(t, `{"status":"failure","error":"Failed to reach URL. boom"}`, string(data))
}
