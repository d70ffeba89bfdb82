package domain

import "context"

// BaselineTrendScore is the score of a query whose regional breakdown
// carries no signal.
const BaselineTrendScore = 0.1

// RegionalInterest is one location entry of a GEO_MAP response.
type RegionalInterest struct {
	Location string
	Value    float64 // 0–100 as reported by the provider
}

// TrendQuery asks for interest in Keyword across the regions of GeoCode
// during Range.
type TrendQuery struct {
	Keyword string
	GeoCode string
	Range   SeasonRange
}

// TrendsClient fetches search interest by region. An error means the fetch
// failed outright; an empty slice means it succeeded without usable data.
type TrendsClient interface {
	Interest(ctx context.Context, q TrendQuery) ([]RegionalInterest, error)
}

// NormalizeTrendScore reduces regional interest to a score in
// [BaselineTrendScore, 1]. The boolean is false when no entry had a
// positive value and the baseline was returned. The result does not depend
// on the order of regions.
func NormalizeTrendScore(regions []RegionalInterest) (float64, bool) {
	var sum float64
	n := 0
	for _, r := range regions {
		if r.Value > 0 {
			sum += r.Value
			n++
		}
	}
	if n == 0 {
		return BaselineTrendScore, false
	}

	score := sum / float64(n) / 100
	switch {
	case score > 1:
		score = 1
	case score < BaselineTrendScore:
		score = BaselineTrendScore
	}
	return score, true
}
