package storage

// DefaultKeepVersions is the history length used when none is configured.
const DefaultKeepVersions = 50

// HistoryPolicy decides how many versions DeleteOlderObjectVersions and
// DeleteOlderPageVersions keep for an item.
type HistoryPolicy struct {
	// KeepVersions is the number of newest versions kept per item.
	KeepVersions int

	// SiteKeepVersions overrides KeepVersions per site name.
	SiteKeepVersions map[string]int
}

// DefaultHistoryPolicy returns the default history policy.
func DefaultHistoryPolicy() HistoryPolicy {
	return HistoryPolicy{KeepVersions: DefaultKeepVersions}
}

// KeepFor returns the history length for a site. Global objects pass an
// empty site name and get the global value. The result is never below 1
// so the current version always survives a trim.
func (p HistoryPolicy) KeepFor(siteName string) int {
	keep := p.KeepVersions
	if n, ok := p.SiteKeepVersions[siteName]; ok && siteName != "" {
		keep = n
	}
	if keep < 1 {
		keep = 1
	}
	return keep
}
