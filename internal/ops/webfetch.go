package ops

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

// PageFetcher retrieves a web page and reduces it to clean article text.
// Plain HTTP first; pages that come back empty (JS-rendered finance
// sites, mostly) go through a headless browser render.
type PageFetcher struct {
	UserAgent string
	HTTP      *http.Client
}

func NewPageFetcher() *PageFetcher {
	return &PageFetcher{
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status code %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, parsedURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return f.format(article.Title, article.Excerpt, article.TextContent), nil
	}

	// Empty extraction usually means a JS-rendered page; render it.
	html, err := f.render(ctx, pageURL)
	if err != nil {
		return "", err
	}
	article, err = readability.FromReader(strings.NewReader(html), parsedURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse article: %v", err)
	}
	return f.format(article.Title, article.Excerpt, article.TextContent), nil
}

// render loads the page in a one-shot headless browser and returns the
// post-JS DOM.
func (f *PageFetcher) render(ctx context.Context, pageURL string) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	renderCtx, cancelRender := context.WithTimeout(browserCtx, 40*time.Second)
	defer cancelRender()

	var html string
	err := chromedp.Run(renderCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser render failed: %v", err)
	}
	return html, nil
}

func (f *PageFetcher) format(title, excerpt, content string) string {
	// Sanitize output (remove any remaining HTML tags or scripts)
	p := bluemonday.StrictPolicy()
	sanitized := p.Sanitize(content)

	output := fmt.Sprintf("TITLE: %s\n", title)
	if excerpt != "" {
		output += fmt.Sprintf("EXCERPT: %s\n", excerpt)
	}
	output += "\n-- CONTENT --\n"

	// Limit content length to avoid massive token usage
	if len(sanitized) > 50000 {
		sanitized = sanitized[:50000] + "\n... (content truncated) ..."
	}
	output += sanitized

	return output
}
