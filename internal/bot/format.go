package bot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Alias1177/Pricer/internal/api/torn"
	"github.com/Alias1177/Pricer/internal/model"
	httpClient "github.com/Alias1177/Pricer/internal/platform/http"
)

// MaxMessageLen is Telegram's limit for one text message.
const MaxMessageLen = 4096

// FormatMoney renders a price as $1,234 (two decimals when fractional) or
// n/a when missing.
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}

	var s string
	if v == math.Trunc(v) {
		s = strconv.FormatFloat(math.Abs(v), 'f', 0, 64)
	} else {
		s = strconv.FormatFloat(math.Abs(v), 'f', 2, 64)
	}

	intPart, frac := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, frac = s[:dot], s[dot:]
	}

	var b strings.Builder
	if v < 0 {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString(frac)
	return b.String()
}

func formatReport(r model.Report) string {
	name := r.ItemName
	if name == "" {
		name = fmt.Sprintf("Item %d", r.ItemID)
	}
	head := fmt.Sprintf("%s [%d] x%d", name, r.ItemID, r.MyQuantity)

	if !r.HasData() {
		return head + "\n  no listings on the market"
	}

	return fmt.Sprintf("%s\n  fast %s | fair %s | greedy %s\n  %s, %d listings, %d anchor(s), net at fair %s",
		head,
		FormatMoney(r.FastSellPrice), FormatMoney(r.FairPrice), FormatMoney(r.GreedyPrice),
		r.CleanRegime, r.NumListings, r.NumSuspectedAnchors,
		FormatMoney(r.FairRevenue.Net))
}

// maxFooterLen caps the unrecognized/failed section so items always fit.
const maxFooterLen = MaxMessageLen / 2

// FormatSummary renders a result as one chat message, cutting the item list
// short to stay under MaxMessageLen. The result is always valid UTF-8.
func FormatSummary(res *Result) string {
	var tail []string
	if len(res.Unmatched) > 0 {
		tail = append(tail, "Not recognized: "+strings.Join(res.Unmatched, ", "))
	}
	for _, f := range res.Failed {
		tail = append(tail, fmt.Sprintf("Fetch failed for %d: %s", f.Request.ItemID, failureReason(f.Err)))
	}
	footer := strings.Join(tail, "\n")
	if len(footer) > maxFooterLen {
		footer = truncateUTF8(footer, maxFooterLen-3) + "..."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Priced %d item(s):\n", len(res.Reports))

	budget := MaxMessageLen - len(footer) - 64
	for i, r := range res.Reports {
		block := "\n" + formatReport(r) + "\n"
		if b.Len()+len(block) > budget {
			fmt.Fprintf(&b, "\n...and %d more, see the attached file\n", len(res.Reports)-i)
			break
		}
		b.WriteString(block)
	}

	if footer != "" {
		b.WriteString("\n")
		b.WriteString(footer)
	}

	return truncateUTF8(b.String(), MaxMessageLen)
}

// failureReason describes a fetch error without transport details, which
// may carry request URLs.
func failureReason(err error) string {
	var apiErr *torn.APIError
	var statusErr *httpClient.HTTPStatusError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.As(err, &statusErr):
		return statusErr.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	default:
		return "market unreachable, try again later"
	}
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
