package crawler

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// keywords are matched as substrings of the lower-cased user agent.
var keywords = []string{
	"bot",
	"slurp",
	"spider",
	"google-structured-data-testing-tool",
	"facebookexternalhit",
	"skypeuripreview",
	"postman",
	"probe",
}

// IsUserAgentCrawler reports whether userAgent contains one of the crawler keywords.
// An empty user agent is never a crawler.
func IsUserAgentCrawler(userAgent string) bool {
	if userAgent == "" {
		return false
	}

	// Casers are stateful and not safe for concurrent use.
	agent := cases.Lower(language.Und).String(userAgent)
	for _, keyword := range keywords {
		if strings.Contains(agent, keyword) {
			return true
		}
	}
	return false
}
