package pipeline

import (
	"hash/fnv"
	"math"
	"strings"

	"github.com/Rohith-G611/civicpulse/pkg/models"
)

const (
	topicBandWidth   = 30
	urgencyBandStart = 300
	urgencyBandWidth = 20
	hashedIncrement  = 0.1
	minHashTokenLen  = 4
)

// FingerprintResult is the understanding stage output: the unit-length
// pseudo-embedding plus the token list downstream stages reuse.
type FingerprintResult struct {
	Vector []float64 `json:"-"`
	Tokens []string  `json:"tokens"`
}

// Fingerprint turns cleaned complaint text into a deterministic 384-element
// vector. Indices 0-299 hold ten 30-wide topic bands, 300-359 hold three
// 20-wide urgency bands, and a hashed bag-of-words signal is spread across
// the whole vector. The result is L2-normalized unless it has no signal at
// all.
func Fingerprint(cleanedText string) FingerprintResult {
	tokens := Tokenize(cleanedText)
	vec := make([]float64, models.FingerprintDim)

	for i, cat := range topicCategories {
		score := keywordScore(tokens, cat.keywords)
		start := i * topicBandWidth
		for j := start; j < start+topicBandWidth; j++ {
			vec[j] = score
		}
	}

	for i, tier := range urgencyTiers {
		score := keywordScore(tokens, tier)
		start := urgencyBandStart + i*urgencyBandWidth
		for j := start; j < start+urgencyBandWidth; j++ {
			vec[j] = score
		}
	}

	for _, tok := range tokens {
		if len(tok) < minHashTokenLen {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32())%models.FingerprintDim] += hashedIncrement
	}

	normalize(vec)

	return FingerprintResult{Vector: vec, Tokens: tokens}
}

// keywordScore computes (exact matches + 0.5 * substring matches) /
// (len(keywords) + 1) between the token list and one keyword set.
func keywordScore(tokens, keywords []string) float64 {
	var exact, substr float64
	for _, tok := range tokens {
		for _, kw := range keywords {
			switch {
			case tok == kw:
				exact++
			case strings.Contains(tok, kw) || strings.Contains(kw, tok):
				substr++
			}
		}
	}
	return (exact + 0.5*substr) / float64(len(keywords)+1)
}

// normalize scales vec to unit L2 length in place. An all-zero vector is
// left untouched.
func normalize(vec []float64) {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}
