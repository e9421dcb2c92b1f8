package council

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const isoDate = "2006-01-02"

// Bin colours the council calendar is known to render.
var binColours = []string{"grey", "black", "blue", "brown", "green", "glass"}

var (
	colourRe = regexp.MustCompile(`(?i)\b(grey|black|blue|brown|green|glass)\b[^.\n]{0,20}?\bbins?\b`)
	// Anchored on start-or-non-digit rather than \b: widget text can abut a
	// date against preceding letters ("Green bin1st April 2026"), and \b
	// cannot match between two word characters.
	dateRe = regexp.MustCompile(`(?i)(?:^|[^0-9])(\d{1,2})(?:st|nd|rd|th)?\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})\b`)
)

// ParseCalendar extracts per-bin collection dates from the results widget's
// markup. The widget renders one block per bin colour with a heading naming
// the colour and a list of upcoming dates beneath it. Extraction is best
// effort: any failure yields an empty map, never an error, so callers can
// treat it as "no data".
func ParseCalendar(html string) map[string][]string {
	out := map[string][]string{}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return out
	}

	doc.Find("h2, h3, h4, strong, b, caption, th, dt").Each(func(_ int, sel *goquery.Selection) {
		colour, ok := headingColour(sel.Text())
		if !ok {
			return
		}
		// Dates live in the heading's enclosing block.
		for _, d := range extractDates(blockText(sel.Parent())) {
			out[colour] = append(out[colour], d)
		}
	})

	// Some council pages render the whole calendar as flat text. Fall back
	// to associating each date with the nearest preceding colour mention.
	if len(out) == 0 {
		out = scanFlatText(blockText(doc.Selection))
	}

	for colour, dates := range out {
		out[colour] = sortUnique(dates)
	}
	return out
}

// blockText renders a selection's text with a space between adjacent
// nodes. Selection.Text concatenates text nodes with no separator, which
// fuses sibling list items ("...2 March 202616 March 2026...") and hides
// dates from the extraction regex.
func blockText(sel *goquery.Selection) string {
	var parts []string
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		var t string
		if goquery.NodeName(c) == "#text" {
			t = strings.TrimSpace(c.Text())
		} else {
			t = blockText(c)
		}
		if t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}

func headingColour(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, c := range binColours {
		if strings.Contains(lower, c+" bin") || strings.Contains(lower, c+"/") {
			return c, true
		}
	}
	return "", false
}

// scanFlatText walks colour mentions and dates by position in the rendered
// text, attributing each date to the most recent colour before it.
func scanFlatText(text string) map[string][]string {
	out := map[string][]string{}

	colours := colourRe.FindAllStringSubmatchIndex(text, -1)
	dates := dateRe.FindAllStringSubmatchIndex(text, -1)
	if len(colours) == 0 || len(dates) == 0 {
		return out
	}

	for _, dm := range dates {
		colour := ""
		for _, cm := range colours {
			if cm[0] > dm[0] {
				break
			}
			colour = strings.ToLower(text[cm[2]:cm[3]])
		}
		if colour == "" {
			continue
		}
		if iso, ok := parseLongDate(text[dm[0]:dm[1]]); ok {
			out[colour] = append(out[colour], iso)
		}
	}
	return out
}

func extractDates(text string) []string {
	var out []string
	for _, m := range dateRe.FindAllString(text, -1) {
		if iso, ok := parseLongDate(m); ok {
			out = append(out, iso)
		}
	}
	return out
}

// parseLongDate converts "3 March 2026" (optionally with an ordinal suffix)
// to ISO form.
func parseLongDate(s string) (string, bool) {
	m := dateRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	cleaned := m[1] + " " + m[2] + " " + m[3]
	t, err := time.Parse("2 January 2006", cleaned)
	if err != nil {
		return "", false
	}
	return t.Format(isoDate), true
}

func sortUnique(dates []string) []string {
	sort.Strings(dates)
	out := dates[:0]
	for i, d := range dates {
		if i == 0 || d != dates[i-1] {
			out = append(out, d)
		}
	}
	return out
}
