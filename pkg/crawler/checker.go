package crawler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/wasilibs/go-re2"
)

// Checker decides whether the current request comes from a crawler.
type Checker interface {
	IsCrawler(ctx context.Context) bool
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) bool

// IsCrawler implements Checker.
func (f CheckerFunc) IsCrawler(ctx context.Context) bool {
	return f(ctx)
}

// UserAgentSource returns the user agent of the current request, or ""
// when there is no request.
type UserAgentSource interface {
	UserAgent(ctx context.Context) string
}

// KeywordChecker extends a baseline checker with the keyword list.
type KeywordChecker struct {
	Baseline Checker // may be nil
	Source   UserAgentSource
}

var _ Checker = (*KeywordChecker)(nil)

// NewKeywordChecker creates a KeywordChecker.
func NewKeywordChecker(baseline Checker, source UserAgentSource) *KeywordChecker {
	return &KeywordChecker{Baseline: baseline, Source: source}
}

// IsCrawler implements Checker.
func (c *KeywordChecker) IsCrawler(ctx context.Context) bool {
	if c.Baseline != nil && c.Baseline.IsCrawler(ctx) {
		return true
	}
	if c.Source == nil {
		return false
	}
	return IsUserAgentCrawler(c.Source.UserAgent(ctx))
}

// DefaultPatterns are the baseline crawler patterns used when none are
// configured.
var DefaultPatterns = []string{
	`(?i)crawler`,
	`(?i)^curl/`,
	`(?i)^wget/`,
	`(?i)python-requests`,
	`(?i)headlesschrome`,
	`(?i)archive\.org_`,
}

// PatternChecker is a baseline checker matching RE2 patterns against the
// user agent.
type PatternChecker struct {
	patterns []*re2.Regexp
	source   UserAgentSource
}

var _ Checker = (*PatternChecker)(nil)

// NewPatternChecker compiles patterns. It fails on the first invalid one.
func NewPatternChecker(patterns []string, source UserAgentSource) (*PatternChecker, error) {
	compiled := make([]*re2.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := re2.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid crawler pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return &PatternChecker{patterns: compiled, source: source}, nil
}

// IsCrawler implements Checker.
func (c *PatternChecker) IsCrawler(ctx context.Context) bool {
	if c.source == nil {
		return false
	}
	ua := c.source.UserAgent(ctx)
	if ua == "" {
		return false
	}
	for _, re := range c.patterns {
		if re.MatchString(ua) {
			return true
		}
	}
	return false
}

type requestKey struct{}

// WithRequest stores r in the context for RequestSource.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestKey{}, r)
}

// RequestFromContext returns the request stored by WithRequest.
func RequestFromContext(ctx context.Context) (*http.Request, bool) {
	r, ok := ctx.Value(requestKey{}).(*http.Request)
	return r, ok && r != nil
}

// RequestSource reads the user agent of the request stored in the context.
type RequestSource struct{}

// UserAgent implements UserAgentSource.
func (RequestSource) UserAgent(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	r, ok := RequestFromContext(ctx)
	if !ok {
		return ""
	}
	return r.UserAgent()
}

// StaticSource always returns the same user agent.
type StaticSource string

// UserAgent implements UserAgentSource.
func (s StaticSource) UserAgent(ctx context.Context) string {
	return string(s)
}
