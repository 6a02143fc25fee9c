// Package inventory turns pasted inventory or market-listing text into item
// ids and quantities.
package inventory

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var actionFragments = []string{
	"Unequip this Item", "Equip this Item", "Return to Faction", "Send this Item",
	"Take this Item", "Trash this Item", "Donate this Item", "Open this Item",
	"Turn on this Item", "Use this Item",
}

var (
	actionRx        = compileActions()
	qtyRx           = regexp.MustCompile(`(?i)\bx(\d+)\b`)
	floatRx         = regexp.MustCompile(`\b\d+\.\d+\b`)
	standaloneIntRx = regexp.MustCompile(`(\s)\d+(\s)`)
	lowerUpperRx    = regexp.MustCompile(`([a-z])([A-Z])`)
	nonKeyRx        = regexp.MustCompile(`[^a-z0-9]+`)
	underscoresRx   = regexp.MustCompile(`_+`)
	spacesRx        = regexp.MustCompile(`\s+`)
	priceLineRx     = regexp.MustCompile(`^\$\s*\d[\d,.]*$`)
	qtyLineRx       = regexp.MustCompile(`^x\s*(\d+)$`)
	colorPrefixRx   = regexp.MustCompile(`(?i)^(yellow|orange)([\s\-_]*)(.*)$`)
)

// noiseLines are fixed labels of the market-listing page.
var noiseLines = map[string]bool{
	"rrp": true, "qty": true, "price": true, "equipped": true, "untradable": true,
}

func compileActions() *regexp.Regexp {
	quoted := make([]string, len(actionFragments))
	for i, a := range actionFragments {
		quoted[i] = regexp.QuoteMeta(a)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))
}

// SplitSegments splits pasted text into one segment per item.
//
// A classic inventory dump is split on the item action phrases ("Equip this
// Item", ...). Anything else is read as the market-listing layout, line by
// line: labels, prices and "Make my listing of" lines are skipped and a
// standalone "xN" line is appended to the item above it.
func SplitSegments(raw string) []string {
	if actionRx.MatchString(raw) {
		return splitOnActions(raw)
	}

	var segments []string
	current := ""

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		low := strings.ToLower(line)

		if noiseLines[low] || strings.HasPrefix(low, "make my listing of") {
			continue
		}
		if strings.HasPrefix(line, "$") && priceLineRx.MatchString(strings.ReplaceAll(line, " ", "")) {
			continue
		}
		if m := qtyLineRx.FindStringSubmatch(low); m != nil && current != "" {
			current += " x" + m[1]
			continue
		}

		if current != "" {
			segments = append(segments, current)
		}
		current = line
	}
	if current != "" {
		segments = append(segments, current)
	}
	return segments
}

func splitOnActions(raw string) []string {
	s := splitLowerUpper(raw)
	s = actionRx.ReplaceAllString(s, "|")
	s = strings.ReplaceAll(s, "|", " | ")
	s = strings.TrimSpace(spacesRx.ReplaceAllString(s, " "))

	var segments []string
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// ToKey normalizes an item name to its dictionary key: HTML entities decoded,
// accents removed, lower case, runs of anything but [a-z0-9] collapsed to a
// single underscore.
func ToKey(name string) string {
	s := strings.ToLower(strings.TrimSpace(html.UnescapeString(name)))
	s = stripAccents(s)
	s = nonKeyRx.ReplaceAllString(s, "_")
	s = underscoresRx.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ExtractQuantity returns N from the first "xN" token.
func ExtractQuantity(text string) (int, bool) {
	m := qtyRx.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// DropColorPrefix removes a leading rarity color.
func DropColorPrefix(text string) string {
	s := strings.TrimSpace(text)
	if m := colorPrefixRx.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[3])
	}
	return s
}

// StripNoise removes quantities, decimals and standalone numbers, leaving
// the item name.
func StripNoise(text string) string {
	text = qtyRx.ReplaceAllString(text, " ")
	text = floatRx.ReplaceAllString(text, " ")
	for {
		next := standaloneIntRx.ReplaceAllString(text, "$1 $2")
		if next == text {
			break
		}
		text = next
	}
	text = splitLowerUpper(text)
	text = strings.ReplaceAll(text, "-", "_")
	text = spacesRx.ReplaceAllString(text, " ")
	return strings.TrimSpace(strings.Trim(text, " :_"))
}

func splitLowerUpper(s string) string {
	return lowerUpperRx.ReplaceAllString(s, "$1 $2")
}
