package inventory

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultFuzzyThreshold is the lowest token-set score accepted as a match.
const DefaultFuzzyThreshold = 80

var tokenRx = regexp.MustCompile(`[a-z0-9]+`)

// Match is the dictionary entry chosen for a candidate name.
type Match struct {
	Key   string
	ID    int64
	Score int
	OK    bool
}

// Line is one parsed segment of pasted text.
type Line struct {
	Segment  string
	Cleaned  string
	Match    Match
	Quantity int
}

// ItemQuantity is a matched item and the summed quantity held.
type ItemQuantity struct {
	ItemID   int64
	Quantity int
}

// TokenSetRatio scores two names 0..100 on their sets of alphanumeric tokens,
// so word order and repeated words do not matter. The shared tokens are
// compared against each side's shared-plus-remaining tokens and the best
// Ratcliff/Obershelp similarity wins.
func TokenSetRatio(a, b string) int {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var inter, aOnly, bOnly []string
	for t := range ta {
		if tb[t] {
			inter = append(inter, t)
		} else {
			aOnly = append(aOnly, t)
		}
	}
	for t := range tb {
		if !ta[t] {
			bOnly = append(bOnly, t)
		}
	}
	sort.Strings(inter)
	sort.Strings(aOnly)
	sort.Strings(bOnly)

	shared := strings.Join(inter, " ")
	combinedA := strings.TrimSpace(shared + " " + strings.Join(aOnly, " "))
	combinedB := strings.TrimSpace(shared + " " + strings.Join(bOnly, " "))

	return max(
		ratio(shared, combinedA),
		ratio(shared, combinedB),
		ratio(combinedA, combinedB),
	)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range tokenRx.FindAllString(strings.ToLower(s), -1) {
		set[t] = true
	}
	return set
}

// ratio is the character-level similarity of x and y scaled to 0..100 with
// round-half-to-even.
func ratio(x, y string) int {
	m := difflib.NewMatcher(strings.Split(x, ""), strings.Split(y, ""))
	return int(math.RoundToEven(100 * m.Ratio()))
}

// BestMatch resolves a candidate name. An exact key scores 100. Otherwise
// every key is scored with TokenSetRatio and the first best is accepted when
// it reaches threshold. Candidates with two or fewer alphanumerics are
// rejected with score -1.
func BestMatch(dict *Dictionary, candidate string, threshold int) Match {
	key := ToKey(candidate)
	if id, ok := dict.Lookup(key); ok {
		return Match{Key: key, ID: id, Score: 100, OK: true}
	}

	if len(strings.ReplaceAll(key, "_", "")) <= 2 {
		return Match{Score: -1}
	}

	best := Match{Score: -1}
	for _, k := range dict.keys {
		if sc := TokenSetRatio(key, k); sc > best.Score {
			best = Match{Key: k, ID: dict.ids[k], Score: sc}
		}
	}
	if best.Score >= threshold {
		best.OK = true
		return best
	}
	return Match{Score: best.Score}
}

// Parse splits pasted text into segments, cleans each into a name and
// quantity (default 1) and matches it. A key matched by an earlier segment
// is skipped; unmatched segments are kept for reporting.
func Parse(raw string, dict *Dictionary, threshold int) []Line {
	var lines []Line
	seen := make(map[string]bool)

	for _, seg := range SplitSegments(raw) {
		base := DropColorPrefix(seg)
		qty, ok := ExtractQuantity(base)
		if !ok {
			qty = 1
		}
		cleaned := StripNoise(base)
		if cleaned == "" {
			continue
		}

		m := BestMatch(dict, cleaned, threshold)
		if m.OK {
			if seen[m.Key] {
				continue
			}
			seen[m.Key] = true
		}

		lines = append(lines, Line{Segment: seg, Cleaned: cleaned, Match: m, Quantity: qty})
	}
	return lines
}

// Aggregate sums quantities of matched lines per item id, ascending by id.
func Aggregate(lines []Line) []ItemQuantity {
	totals := make(map[int64]int)
	for _, l := range lines {
		if !l.Match.OK {
			continue
		}
		q := l.Quantity
		if q <= 0 {
			q = 1
		}
		totals[l.Match.ID] += q
	}

	items := make([]ItemQuantity, 0, len(totals))
	for id, q := range totals {
		items = append(items, ItemQuantity{ItemID: id, Quantity: q})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })
	return items
}

// Unmatched returns the cleaned names that found no dictionary entry.
func Unmatched(lines []Line) []string {
	var names []string
	for _, l := range lines {
		if !l.Match.OK {
			names = append(names, l.Cleaned)
		}
	}
	return names
}
