package pipeline

// Keyword tables driving normalization, fingerprinting and scoring.
// Categories are ordered: each occupies a fixed band of the fingerprint
// vector, so reordering them changes every stored fingerprint.

var stopWords = map[string]bool{
	"the": true, "is": true, "a": true, "an": true, "and": true,
	"or": true, "in": true, "on": true, "at": true, "to": true,
	"of": true, "my": true, "our": true, "near": true, "for": true,
	"with": true, "this": true, "that": true, "there": true,
	"are": true, "was": true, "were": true, "has": true, "have": true,
	"very": true, "been": true, "from": true, "its": true, "it": true,
}

// topicCategory is one of the 10 fixed complaint topics. Each category owns
// a 30-element band of the fingerprint vector.
type topicCategory struct {
	name     string
	keywords []string
}

var topicCategories = []topicCategory{
	{"water", []string{"water", "pipe", "pipeline", "leak", "leaking", "leakage", "tap", "supply", "drinking", "tank", "bore", "well"}},
	{"electricity", []string{"electricity", "power", "outage", "transformer", "wire", "voltage", "current", "shock", "blackout", "meter"}},
	{"roads", []string{"road", "pothole", "potholes", "street", "highway", "pavement", "footpath", "asphalt", "crack", "bridge"}},
	{"garbage", []string{"garbage", "trash", "waste", "litter", "dump", "dumping", "bin", "collection", "smell", "rotting"}},
	{"sewage", []string{"sewage", "drain", "drainage", "gutter", "overflow", "sewer", "manhole", "clogged", "stagnant", "flooding"}},
	{"streetlight", []string{"streetlight", "light", "lights", "lamp", "bulb", "dark", "darkness", "pole", "flickering"}},
	{"traffic", []string{"traffic", "signal", "jam", "congestion", "parking", "vehicle", "vehicles", "crossing", "accident", "speed"}},
	{"noise", []string{"noise", "loud", "noisy", "construction", "horn", "music", "disturbance", "speaker", "party"}},
	{"safety", []string{"safety", "unsafe", "crime", "theft", "robbery", "harassment", "stray", "dogs", "dangerous", "security"}},
	{"environment", []string{"park", "tree", "trees", "garden", "playground", "pollution", "air", "smoke", "burning", "green"}},
}

// Urgency tiers. Each owns a 20-element band after the topic bands; the
// urgent and important tiers also drive the severity component of the
// priority score.
var (
	urgentKeywords = []string{
		"urgent", "emergency", "immediately", "danger", "dangerous",
		"severe", "critical", "accident", "fire", "burst", "collapse",
		"injured", "death",
	}
	importantKeywords = []string{
		"broken", "damaged", "damage", "leaking", "overflow", "blocked",
		"unsafe", "outage", "failing", "badly", "serious", "major",
	}
	minorKeywords = []string{
		"request", "suggestion", "improve", "improvement", "minor",
		"slow", "inconvenient", "sometimes", "occasionally",
	}
)

var urgencyTiers = [][]string{urgentKeywords, importantKeywords, minorKeywords}

// importanceVocabulary is the fixed vocabulary the explainability stage
// counts keyword frequencies over: every topic and urgency keyword.
var importanceVocabulary = buildImportanceVocabulary()

func buildImportanceVocabulary() map[string]bool {
	vocab := make(map[string]bool)
	for _, cat := range topicCategories {
		for _, kw := range cat.keywords {
			vocab[kw] = true
		}
	}
	for _, tier := range urgencyTiers {
		for _, kw := range tier {
			vocab[kw] = true
		}
	}
	return vocab
}
