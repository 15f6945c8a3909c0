package simulation

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"afriqar/internal/content"
)

// Random is a mutex-guarded PRNG shared by the generators.
type Random struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandom returns a deterministic source for seed.
func NewRandom(seed uint64) *Random {
	return &Random{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewSeededRandom returns a randomly seeded source.
func NewSeededRandom() *Random { return NewRandom(rand.Uint64()) }

// between returns an integer in [lo, lo+span).
func (r *Random) between(lo, span int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo + r.r.IntN(span)
}

// DNAResult is the outcome of a simulated analysis.
type DNAResult struct {
	FileName      string `json:"fileName"`
	TotalMarkers  int    `json:"totalMarkers"`
	Confidence    int    `json:"confidence"`
	TribalMatches int    `json:"tribalMatches"`
}

// ErrInvalidUpload reports an upload the analysis does not accept.
var ErrInvalidUpload = errors.New("simulation: unsupported upload")

// UploadExtensions are the accepted raw-data file types.
var UploadExtensions = []string{".txt", ".csv", ".json"}

// ValidateUpload checks the file name against UploadExtensions.
func ValidateUpload(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: file name required", ErrInvalidUpload)
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, ok := range UploadExtensions {
		if ext == ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (accepted: %s)", ErrInvalidUpload, name, strings.Join(UploadExtensions, ", "))
}

// DNAAnalysis fabricates analysis figures for an uploaded file.
func DNAAnalysis(r *Random, fileName string) DNAResult {
	return DNAResult{
		FileName:      fileName,
		TotalMarkers:  r.between(500000, 500000),
		Confidence:    r.between(85, 15),
		TribalMatches: r.between(3, 8),
	}
}

// TribalMatch links the analysis to one tribe.
type TribalMatch struct {
	Tribe      content.Tribe `json:"tribe"`
	Percentage int           `json:"percentage"`
	Confidence int           `json:"confidence"`
	Markers    int           `json:"markers"`
}

// MatchLimit is how many tribes take part in matching.
const MatchLimit = 5

// TribalMatches scores the first MatchLimit tribes, the first one weighted
// higher, and orders them by percentage descending.
func TribalMatches(r *Random, tribes []content.Tribe) []TribalMatch {
	if len(tribes) > MatchLimit {
		tribes = tribes[:MatchLimit]
	}
	out := make([]TribalMatch, len(tribes))
	for i, tribe := range tribes {
		base := 5
		if i == 0 {
			base = 25
		}
		out[i] = TribalMatch{
			Tribe:      tribe,
			Percentage: r.between(base, 30),
			Confidence: r.between(85, 15),
			Markers:    r.between(1000, 5000),
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Percentage > out[j].Percentage })
	return out
}
