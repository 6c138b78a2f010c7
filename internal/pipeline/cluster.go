package pipeline

import (
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/Rohith-G611/civicpulse/pkg/models"
)

const (
	maxKMeansRounds      = 20
	centroidStableCosine = 0.999
	minClusters          = 3
	maxClusters          = 8
	// LinkConfidence is the fixed confidence recorded on every
	// complaint-problem membership.
	LinkConfidence = 0.8
)

// Cluster is one discovered group of similar complaints.
type Cluster struct {
	Centroid []float64
	Members  []*models.Complaint
}

// ClusterCount returns k for n complaints: ceil(n/3) clamped to [3, 8] and
// capped at n.
func ClusterCount(n int) int {
	k := (n + 2) / 3
	if k < minClusters {
		k = minClusters
	}
	if k > maxClusters {
		k = maxClusters
	}
	if k > n {
		k = n
	}
	return k
}

// KMeans groups complaints by cosine similarity of their fingerprints.
// Initial centroids are sampled from the complaints at random with
// replacement; duplicate seeds collapse into empty clusters, which are
// dropped from the result. Centroids are arithmetic means and deliberately
// not renormalized: cosine similarity is scale-invariant, and renormalizing
// changes convergence timing.
func KMeans(complaints []*models.Complaint, rng *rand.Rand) []Cluster {
	if len(complaints) == 0 {
		return []Cluster{}
	}

	k := ClusterCount(len(complaints))

	centroids := make([][]float64, k)
	for i := range centroids {
		seed := complaints[rng.Intn(len(complaints))].Fingerprint
		centroids[i] = append([]float64(nil), seed...)
	}

	assignments := make([]int, len(complaints))
	for round := 0; round < maxKMeansRounds; round++ {
		for i, c := range complaints {
			assignments[i] = nearestCentroid(c.Fingerprint, centroids)
		}

		changed := false
		for ci := range centroids {
			mean := memberMean(complaints, assignments, ci)
			if mean == nil {
				continue
			}
			if CosineSimilarity(centroids[ci], mean) < centroidStableCosine {
				changed = true
			}
			centroids[ci] = mean
		}
		if !changed {
			break
		}
	}

	clusters := make([]Cluster, 0, k)
	for ci := range centroids {
		var members []*models.Complaint
		for i, a := range assignments {
			if a == ci {
				members = append(members, complaints[i])
			}
		}
		if len(members) == 0 {
			continue
		}
		clusters = append(clusters, Cluster{Centroid: centroids[ci], Members: members})
	}
	return clusters
}

// nearestCentroid returns the index of the centroid with the highest cosine
// similarity; ties go to the earlier centroid.
func nearestCentroid(vec []float64, centroids [][]float64) int {
	best := 0
	bestSim := math.Inf(-1)
	for i, c := range centroids {
		if sim := CosineSimilarity(vec, c); sim > bestSim {
			best = i
			bestSim = sim
		}
	}
	return best
}

// memberMean returns the element-wise mean fingerprint of the complaints
// assigned to cluster ci, or nil if the cluster is empty.
func memberMean(complaints []*models.Complaint, assignments []int, ci int) []float64 {
	var mean []float64
	count := 0
	for i, a := range assignments {
		if a != ci {
			continue
		}
		if mean == nil {
			mean = make([]float64, len(complaints[i].Fingerprint))
		}
		for j, v := range complaints[i].Fingerprint {
			mean[j] += v
		}
		count++
	}
	if count == 0 {
		return nil
	}
	for j := range mean {
		mean[j] /= float64(count)
	}
	return mean
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 if
// either has zero magnitude.
func CosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ClusterTitle derives a problem title from the three most frequent tokens
// (length > 3) across the members' cleaned text, title-cased and joined
// with " & ". Falls back to "General Issues" when no token qualifies.
func ClusterTitle(members []*models.Complaint) string {
	counts := make(map[string]int)
	var order []string
	for _, m := range members {
		for _, tok := range Tokenize(m.CleanedText) {
			if len(tok) <= 3 {
				continue
			}
			if counts[tok] == 0 {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}
	if len(order) == 0 {
		return "General Issues"
	}

	// Stable sort keeps first-occurrence order among equal counts.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > 3 {
		order = order[:3]
	}

	titled := make([]string, len(order))
	for i, tok := range order {
		titled[i] = strings.ToUpper(tok[:1]) + tok[1:]
	}
	return strings.Join(titled, " & ") + " Issues"
}
