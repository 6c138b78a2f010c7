package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Rohith-G611/civicpulse/pkg/models"
)

const (
	maxKeywords       = 8
	maxSamples        = 3
	burstWindow       = 24 * time.Hour
	concentrationMin  = 3
	dispersionMin     = 4
	largeVolumeMin    = 5
	multipleVolumeMin = 3
)

// Explanation is the explainability stage output for one problem.
type Explanation struct {
	Keywords  []string `json:"keywords"`
	Samples   []string `json:"samples"`
	Reason    string   `json:"reason"`
	Narrative string   `json:"narrative"`
}

// Explain derives keywords, representative samples, the narrative reason and
// the priority narrative for one problem and its linked complaints.
func Explain(problem *models.Problem, complaints []*models.Complaint, now time.Time) Explanation {
	keywords := ExtractKeywords(complaints)
	return Explanation{
		Keywords:  keywords,
		Samples:   representativeSamples(complaints),
		Reason:    buildReason(problem, complaints, keywords, now),
		Narrative: PriorityNarrative(problem.PriorityScore, problem.Trend),
	}
}

// ExtractKeywords counts tokens (length > 3) from the importance vocabulary
// across the members' cleaned text and returns the top 8 by frequency, with
// ties broken by first occurrence.
func ExtractKeywords(complaints []*models.Complaint) []string {
	counts := make(map[string]int)
	var order []string
	for _, c := range complaints {
		for _, tok := range Tokenize(c.CleanedText) {
			if len(tok) <= 3 || !importanceVocabulary[tok] {
				continue
			}
			if counts[tok] == 0 {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}

// representativeSamples picks up to 3 complaints with the longest cleaned
// text, preferring the original text for display.
func representativeSamples(complaints []*models.Complaint) []string {
	sorted := append([]*models.Complaint(nil), complaints...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].CleanedText) > len(sorted[j].CleanedText)
	})
	if len(sorted) > maxSamples {
		sorted = sorted[:maxSamples]
	}

	samples := make([]string, 0, len(sorted))
	for _, c := range sorted {
		if c.Text != "" {
			samples = append(samples, c.Text)
		} else {
			samples = append(samples, c.CleanedText)
		}
	}
	return samples
}

// buildReason assembles the ordered, semicolon-joined list of clauses that
// justify the problem's priority.
func buildReason(problem *models.Problem, complaints []*models.Complaint, keywords []string, now time.Time) string {
	n := len(complaints)
	var clauses []string

	switch {
	case n >= largeVolumeMin:
		clauses = append(clauses, fmt.Sprintf("high volume of reports (%d complaints)", n))
	case n >= multipleVolumeMin:
		clauses = append(clauses, fmt.Sprintf("multiple reports (%d complaints)", n))
	default:
		clauses = append(clauses, fmt.Sprintf("%d complaint(s) reported", n))
	}

	if containsUrgencyKeyword(keywords) {
		clauses = append(clauses, "urgent language detected in reports")
	}

	locations := make(map[string]int)
	for _, c := range complaints {
		if loc := strings.TrimSpace(c.Location); loc != "" {
			locations[loc]++
		}
	}
	if loc, count := dominantLocation(locations); count >= concentrationMin {
		clauses = append(clauses, fmt.Sprintf("concentrated in %s (%d complaints)", loc, count))
	} else if len(locations) >= dispersionMin {
		clauses = append(clauses, fmt.Sprintf("spread across %d locations", len(locations)))
	}

	recent := 0
	for _, c := range complaints {
		if now.Sub(c.CreatedAt) < burstWindow {
			recent++
		}
	}
	if recent >= 2 {
		clauses = append(clauses, fmt.Sprintf("%d complaints in the last 24 hours", recent))
	}

	if problem.Trend == models.TrendRising {
		clauses = append(clauses, "complaint volume is rising")
	}

	return strings.Join(clauses, "; ")
}

func containsUrgencyKeyword(keywords []string) bool {
	for _, kw := range keywords {
		for _, tier := range urgencyTiers {
			for _, urgency := range tier {
				if kw == urgency {
					return true
				}
			}
		}
	}
	return false
}

// dominantLocation returns the location with the most complaints.
func dominantLocation(locations map[string]int) (string, int) {
	var best string
	bestCount := 0
	for loc, n := range locations {
		if n > bestCount {
			best, bestCount = loc, n
		}
	}
	return best, bestCount
}

// PriorityLabel maps a composite score to its tier label.
func PriorityLabel(score int) string {
	switch {
	case score >= 80:
		return "CRITICAL"
	case score >= 60:
		return "HIGH"
	case score >= 40:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// PriorityNarrative is the tiered message persisted as the problem
// description, with a trend-conditioned closing sentence.
func PriorityNarrative(score int, trend string) string {
	var msg string
	switch PriorityLabel(score) {
	case "CRITICAL":
		msg = "CRITICAL priority: this problem requires immediate municipal attention."
	case "HIGH":
		msg = "HIGH priority: this problem should be scheduled for prompt resolution."
	case "MEDIUM":
		msg = "MEDIUM priority: this problem is noticeably affecting residents."
	default:
		msg = "LOW priority: minor issue, monitor for changes."
	}

	switch trend {
	case models.TrendRising:
		msg += " Complaint volume is increasing."
	case models.TrendFalling:
		msg += " Complaint volume is declining."
	default:
		msg += " Complaint volume is steady."
	}
	return msg
}
