package analyzer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Analyzer fetches a page and summarizes its structure.
type Analyzer struct {
	fetcher Fetcher
	logger  *zap.Logger
}

// New returns an Analyzer that fetches through fetcher.
func New(fetcher Fetcher, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Analyze fetches rawURL and returns its summary. Transport failures and
// unparseable documents come back as a Failure result, never as an error.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) Result {
	page, err := a.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		a.logger.Info("fetch failed", zap.String("url", rawURL), zap.Error(err))
		return Failure(fmt.Sprintf("Failed to reach URL. %v", err))
	}
	a.logger.Debug("page fetched",
		zap.String("url", rawURL),
		zap.String("final_url", page.URL),
		zap.Int("status", page.StatusCode),
		zap.Int("bytes", len(page.Body)),
		zap.Duration("duration", page.Duration),
	)

	result, err := a.Summarize(rawURL, page.Body)
	if err != nil {
		a.logger.Error("parse failed", zap.String("url", rawURL), zap.Error(err))
		return Failure(fmt.Sprintf("Failed to parse page. %v", err))
	}
	return result
}

// Summarize extracts the structural summary from an HTML body.
// rawURL is only used for log context.
func (a *Analyzer) Summarize(rawURL string, body []byte) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build document: %w", err)
	}

	title := extractTitle(doc)
	if title == nil {
		a.logger.Debug("page has no title", zap.String("url", rawURL))
	}

	links, missingHref := classifyAnchors(doc)
	if missingHref > 0 {
		a.logger.Debug("anchors without href skipped",
			zap.String("url", rawURL),
			zap.Int("count", missingHref),
		)
	}

	return Result{
		Status:        StatusSuccess,
		Version:       DetectVersion(body),
		Title:         title,
		HeadingCounts: countHeadings(doc),
		LinkInfo:      links,
		LoginForm:     hasLoginForm(doc),
	}, nil
}

// extractTitle returns the direct text of the first <title>, or nil when the
// element is missing or empty.
func extractTitle(doc *goquery.Document) *string {
	sel := doc.Find("title").First()
	if sel.Length() == 0 {
		return nil
	}
	child := sel.Get(0).FirstChild
	if child == nil || child.Type != html.TextNode {
		return nil
	}
	title := child.Data
	return &title
}

func countHeadings(doc *goquery.Document) HeadingCounts {
	return HeadingCounts{
		H1: doc.Find("h1").Length(),
		H2: doc.Find("h2").Length(),
		H3: doc.Find("h3").Length(),
		H4: doc.Find("h4").Length(),
		H5: doc.Find("h5").Length(),
		H6: doc.Find("h6").Length(),
	}
}

// classifyAnchors tallies every <a> by ClassifyLink and reports how many
// anchors had no href attribute at all.
func classifyAnchors(doc *goquery.Document) (LinkInfo, int) {
	var (
		info    LinkInfo
		missing int
	)
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			missing++
			return
		}
		info.add(ClassifyLink(href))
	})
	return info, missing
}

// hasLoginForm reports whether any password input sits inside a form.
// Signup forms match too.
func hasLoginForm(doc *goquery.Document) bool {
	return doc.Find(`form input[type="password"]`).Length() > 0
}
