package crawler

import (
	"context"
	"net/http/httptest"
	"slices"
	"testing"
)

func TestIsUserAgentCrawler(t *testing.T) {
	tests := []struct {
		ua   string
		want bool
	}{
		{"Mozilla/5.0 (compatible; Googlebot/2.1)", true},
		{"Mozilla/5.0 Firefox", false},
		{"", false},
		{"Mozilla/5.0 (compatible; Yahoo! Slurp)", true},
		{"Baiduspider+(+http://www.baidu.com/search/spider.htm)", true},
		{"Google-Structured-Data-Testing-Tool #1234", true},
		{"facebookexternalhit/1.1", true},
		{"SkypeUriPreview Preview/0.5", true},
		{"PostmanRuntime/7.36.0", true},
		{"Consul Health Probe", true},
		{"MOZILLA/5.0 BINGBOT", true},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.ua, func(t *testing.T) {
			if got := IsUserAgentCrawler(tt.ua); got != tt.want {
				t.Errorf("IsUserAgentCrawler(%q) = %v, want %v", tt.ua, got, tt.want)
			}
		})
	}
}

func TestKeywords(t *testing.T) {
	want := []string{
		"bot", "slurp", "spider", "google-structured-data-testing-tool",
		"facebookexternalhit", "skypeuripreview", "postman", "probe",
	}
	if !slices.Equal(keywords, want) {
		t.Errorf("keywords = %v, want %v", keywords, want)
	}
}

func TestKeywordChecker(t *testing.T) {
	always := CheckerFunc(func(ctx context.Context) bool { return true })
	never := CheckerFunc(func(ctx context.Context) bool { return false })

	tests := []struct {
		name     string
		baseline Checker
		source   UserAgentSource
		want     bool
	}{
		{"no user agent, no baseline", nil, StaticSource(""), false},
		{"no user agent, baseline true", always, StaticSource(""), true},
		{"no source, baseline false", never, nil, false},
		{"keyword match", never, StaticSource("Mozilla/5.0 (compatible; Googlebot/2.1)"), true},
		{"browser", never, StaticSource("Mozilla/5.0 Firefox"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewKeywordChecker(tt.baseline, tt.source)
			if got := c.IsCrawler(context.Background()); got != tt.want {
				t.Errorf("IsCrawler() = %v, want %v", got, tt.want)
			}
		})
	}
}

type countingSource struct {
	ua    string
	calls int
}

func (s *countingSource) UserAgent(ctx context.Context) string {
	s.calls++
	return s.ua
}

func TestKeywordChecker_BaselineShortCircuits(t *testing.T) {
	source := &countingSource{ua: "Googlebot"}
	c := NewKeywordChecker(CheckerFunc(func(ctx context.Context) bool { return true }), source)

	if !c.IsCrawler(context.Background()) {
		t.Fatal("expected crawler")
	}
	if source.calls != 0 {
		t.Errorf("expected user agent not to be read, got %d reads", source.calls)
	}
}

func TestPatternChecker(t *testing.T) {
	c, err := NewPatternChecker(DefaultPatterns, RequestSource{})
	if err != nil {
		t.Fatalf("NewPatternChecker() failed: %v", err)
	}

	tests := []struct {
		ua   string
		want bool
	}{
		{"curl/8.4.0", true},
		{"Wget/1.21", true},
		{"SomeCrawler/1.0", true},
		{"Mozilla/5.0 Firefox", false},
		{"", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("User-Agent", tt.ua)
		ctx := WithRequest(context.Background(), r)
		if got := c.IsCrawler(ctx); got != tt.want {
			t.Errorf("IsCrawler(%q) = %v, want %v", tt.ua, got, tt.want)
		}
	}

	if c.IsCrawler(context.Background()) {
		t.Error("expected no crawler without a request")
	}
}

func TestNewPatternChecker_Invalid(t *testing.T) {
	if _, err := NewPatternChecker([]string{"(unclosed"}, StaticSource("")); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestRequestSource(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("User-Agent", "PostmanRuntime/7.36.0")

	if got := (RequestSource{}).UserAgent(WithRequest(context.Background(), r)); got != "PostmanRuntime/7.36.0" {
		t.Errorf("UserAgent() = %q", got)
	}
	if got := (RequestSource{}).UserAgent(context.Background()); got != "" {
		t.Errorf("expected empty user agent, got %q", got)
	}
}
