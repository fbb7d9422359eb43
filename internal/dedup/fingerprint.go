package dedup

import (
	"hash/fnv"
	"sort"
	"strings"

	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/newsletter"
)

// shingleSize is the word window used for similarity fingerprints. Three
// words is wide enough to avoid pairing unrelated headlines on shared
// stopwords and narrow enough to survive small edits.
const shingleSize = 3

// Fingerprint hashes the word shingles of the normalized title+body into a
// sorted, deduplicated set. Returns nil when the text is too short to carry
// a meaningful signature.
func Fingerprint(title, body string) []uint64 {
	words := strings.Fields(newsletter.NormalizeText(title + " " + body))
	if len(words) == 0 {
		return nil
	}
	if len(words) < shingleSize {
		// Degenerate but still comparable: hash the whole text once.
		return []uint64{hashShingle(words)}
	}

	seen := make(map[uint64]struct{}, len(words))
	for i := 0; i+shingleSize <= len(words); i++ {
		seen[hashShingle(words[i:i+shingleSize])] = struct{}{}
	}

	fp := make([]uint64, 0, len(seen))
	for h := range seen {
		fp = append(fp, h)
	}
	sort.Slice(fp, func(i, j int) bool { return fp[i] < fp[j] })
	return fp
}

func hashShingle(words []string) uint64 {
	h := fnv.New64a()
	for i, w := range words {
		if i > 0 {
			h.Write([]byte{' '})
		}
		h.Write([]byte(w))
	}
	return h.Sum64()
}

// Jaccard computes |a∩b| / |a∪b| over two sorted fingerprint sets.
func Jaccard(a, b []uint64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	inter := 0
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			inter++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}

	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
