package pipeline

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Rohith-G611/civicpulse/pkg/models"
)

const (
	severityCap        = 10.0
	trendGrowthRising  = 1.3
	trendGrowthFalling = 0.7
	trendGapFactor     = 0.7
)

// PriorityBreakdown holds the composite priority score and the components
// it was derived from.
type PriorityBreakdown struct {
	ComplaintCount  int     `json:"complaint_count"`
	SeverityScore   float64 `json:"severity_score"`
	RecencyScore    float64 `json:"recency_score"`
	LocationDensity float64 `json:"location_density"`
	NormalizedCount float64 `json:"normalized_count"`
	Composite       int     `json:"composite"`
}

// ScorePriority computes the 0-100 urgency score for one problem's linked
// complaints. now anchors the recency weights so scoring is reproducible.
func ScorePriority(complaints []*models.Complaint, now time.Time) PriorityBreakdown {
	b := PriorityBreakdown{ComplaintCount: len(complaints)}
	if len(complaints) == 0 {
		return b
	}

	var severitySum, recencySum float64
	locations := make(map[string]int)
	for _, c := range complaints {
		severitySum += float64(3*keywordHits(c.CleanedText, urgentKeywords) +
			keywordHits(c.CleanedText, importantKeywords))
		recencySum += recencyWeight(now.Sub(c.CreatedAt))
		if loc := strings.TrimSpace(c.Location); loc != "" {
			locations[loc]++
		}
	}

	b.SeverityScore = severitySum / float64(len(complaints))
	if b.SeverityScore > severityCap {
		b.SeverityScore = severityCap
	}
	b.RecencyScore = recencySum / float64(len(complaints))

	maxShared := 0
	for _, n := range locations {
		if n > maxShared {
			maxShared = n
		}
	}
	b.LocationDensity = math.Log10(float64(maxShared)+1) * 3

	b.NormalizedCount = math.Min(float64(len(complaints))/10, 1) * 100

	composite := b.NormalizedCount*0.4 +
		b.SeverityScore*10*0.35 +
		b.RecencyScore*10*0.15 +
		b.LocationDensity*10*0.1
	b.Composite = int(math.Round(math.Min(100, composite)))
	return b
}

// ClassifyTrend compares complaint arrival in the first and second halves of
// the problem's time range. Fewer than 2 complaints is always stable.
func ClassifyTrend(complaints []*models.Complaint, now time.Time) string {
	if len(complaints) < 2 {
		return models.TrendStable
	}

	sorted := append([]*models.Complaint(nil), complaints...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	earliest := sorted[0].CreatedAt
	latest := sorted[len(sorted)-1].CreatedAt
	if !latest.After(earliest) {
		return models.TrendStable
	}

	// Split at the midpoint of the observed range. The earliest complaint
	// always lands in the first half and the latest in the second, so
	// neither half is empty.
	midTime := earliest.Add(latest.Sub(earliest) / 2)
	var first, second []*models.Complaint
	for _, c := range sorted {
		if c.CreatedAt.Before(midTime) {
			first = append(first, c)
		} else {
			second = append(second, c)
		}
	}
	growth := float64(len(second)) / float64(len(first))

	actualGap := avgTime(second).Sub(avgTime(first))
	expectedGap := now.Sub(earliest) / 2

	switch {
	case growth > trendGrowthRising && float64(actualGap) < trendGapFactor*float64(expectedGap):
		return models.TrendRising
	case growth < trendGrowthFalling:
		return models.TrendFalling
	default:
		return models.TrendStable
	}
}

// keywordHits counts occurrences of any keyword among the text's tokens.
func keywordHits(cleanedText string, keywords []string) int {
	hits := 0
	for _, tok := range Tokenize(cleanedText) {
		for _, kw := range keywords {
			if tok == kw {
				hits++
			}
		}
	}
	return hits
}

func recencyWeight(age time.Duration) float64 {
	switch {
	case age < 24*time.Hour:
		return 3
	case age < 7*24*time.Hour:
		return 1.5
	default:
		return 0.5
	}
}

func avgTime(complaints []*models.Complaint) time.Time {
	var sum int64
	for _, c := range complaints {
		sum += c.CreatedAt.UnixNano()
	}
	return time.Unix(0, sum/int64(len(complaints))).UTC()
}
