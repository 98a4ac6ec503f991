package services

import "strings"

// MarginBucket selects entries by margin classification. The zero value
// matches every entry.
type MarginBucket string

const (
	BucketAll         MarginBucket = ""
	BucketLossRisk    MarginBucket = "loss"
	BucketBelowTarget MarginBucket = "below"
	BucketHealthy     MarginBucket = "healthy"
)

// MarginBucketOptions lists the margin filter choices in display order.
var MarginBucketOptions = []struct {
	Value MarginBucket
	Label string
}{
	{BucketAll, "All"},
	{BucketLossRisk, "Loss Risk (<20%)"},
	{BucketBelowTarget, "Below Target (20-29%)"},
	{BucketHealthy, "Healthy (≥30%)"},
}

// ParseMarginBucket maps a query value onto a bucket; unknown values mean
// no margin filter.
func ParseMarginBucket(s string) MarginBucket {
	switch MarginBucket(strings.ToLower(strings.TrimSpace(s))) {
	case BucketLossRisk:
		return BucketLossRisk
	case BucketBelowTarget:
		return BucketBelowTarget
	case BucketHealthy:
		return BucketHealthy
	}
	return BucketAll
}

// Matches reports whether a margin percentage falls in the bucket.
func (b MarginBucket) Matches(marginPct float64) bool {
	switch b {
	case BucketLossRisk:
		return Classify(marginPct) == MarginLossRisk
	case BucketBelowTarget:
		return Classify(marginPct) == MarginBelowTarget
	case BucketHealthy:
		return Classify(marginPct) == MarginHealthy
	}
	return true
}

// FilterCriteria are the independent table filters. Empty fields are
// inactive; Status "All" is treated as empty.
type FilterCriteria struct {
	Status  string
	Project string
	Vendor  string
	Site    string
	Bucket  MarginBucket
}

// IsEmpty reports whether no criterion is active.
func (c FilterCriteria) IsEmpty() bool {
	return c.status() == "" &&
		strings.TrimSpace(c.Project) == "" &&
		strings.TrimSpace(c.Vendor) == "" &&
		strings.TrimSpace(c.Site) == "" &&
		c.Bucket == BucketAll
}

func (c FilterCriteria) status() string {
	s := strings.TrimSpace(c.Status)
	if strings.EqualFold(s, "all") {
		return ""
	}
	return s
}

// Match reports whether e satisfies every active criterion.
func (c FilterCriteria) Match(e Entry) bool {
	if s := c.status(); s != "" && e.Status != s {
		return false
	}
	if !containsFold(e.Project, c.Project) {
		return false
	}
	if !containsFold(e.VendorName, c.Vendor) {
		return false
	}
	if !containsFold(e.SiteID, c.Site) {
		return false
	}
	return c.Bucket.Matches(e.MarginPct)
}

// Filter returns the entries matching c, in their original order. The input
// slice is not modified.
func Filter(entries []Entry, c FilterCriteria) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if c.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	substr = strings.TrimSpace(substr)
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
