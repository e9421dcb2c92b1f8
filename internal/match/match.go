// Package match turns scraped council collection dates into a serviceable
// clean date: pick the earliest collection relevant to the customer's bins,
// then find the first day the rota actually covers their area.
package match

import (
	"sort"
	"strings"
	"time"

	"github.com/example/binrota/internal/rota"
)

const isoDate = "2006-01-02"

// coverageWindowDays is how far ahead of the next empty date the rota is
// scanned, inclusive of the start day.
const coverageWindowDays = 28

// Coverage is a rota day that can serve a customer.
type Coverage struct {
	Date     string // ISO date of the proposed clean
	RotaArea string // rota area label that matched
}

// EarliestRequestedDate picks the earliest upcoming collection date across
// the bin colours the customer actually requested (quantity > 0). Each
// colour's date list is ascending, so only its first entry is considered.
// The second return is false when no requested colour has any extracted
// date, i.e. the lookup data is insufficient to answer.
//
// Dates are ISO YYYY-MM-DD strings, so lexical order is chronological order.
func EarliestRequestedDate(datesByBin map[string][]string, bins map[string]int) (string, bool) {
	var candidates []string
	for colour, qty := range bins {
		if qty <= 0 {
			continue
		}
		if dates := datesByBin[colour]; len(dates) > 0 {
			candidates = append(candidates, dates[0])
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Strings(candidates)
	return candidates[0], true
}

// NextCoveredCleanDate scans forward from startISO for up to 28 days
// (inclusive) looking for the first rota day covering the customer's area.
// A rota day matches when its area equals the customer's exactly, or
// contains it as a case-insensitive substring — rota labels are often
// compound ("Ards & Bangor") while customers carry a single town.
func NextCoveredCleanDate(startISO, customerArea string) (Coverage, bool) {
	start, err := time.Parse(isoDate, startISO)
	if err != nil {
		return Coverage{}, false
	}
	for i := 0; i < coverageWindowDays; i++ {
		day := start.AddDate(0, 0, i)
		area, ok := rota.AreaFor(day)
		if !ok {
			continue
		}
		if areaMatches(area, customerArea) {
			return Coverage{Date: day.Format(isoDate), RotaArea: area}, true
		}
	}
	return Coverage{}, false
}

func areaMatches(rotaArea, customerArea string) bool {
	if customerArea == "" {
		return false
	}
	if rotaArea == customerArea {
		return true
	}
	return strings.Contains(strings.ToLower(rotaArea), strings.ToLower(customerArea))
}
