// Package rota holds the business's recurring 4-week service rota: which
// area gets cleaned on which weekday, repeating on a fixed 4-week cycle.
package rota

import "time"

// anchor is the Monday the current rota cycle started. Week indexes count
// whole weeks from this date, modulo 4.
var anchor = time.Date(2025, time.February, 17, 0, 0, 0, 0, time.UTC)

// table maps (week index, weekday) to the service area covered that day.
// Fridays are office days and weekends are closed, so only Mon-Thu appear.
var table = [4]map[time.Weekday]string{
	{
		time.Monday:    "Groomsport & Bangor",
		time.Tuesday:   "Donaghadee",
		time.Wednesday: "Newtownards",
		time.Thursday:  "Comber",
	},
	{
		time.Monday:    "Holywood & Helen's Bay",
		time.Tuesday:   "Bangor West",
		time.Wednesday: "Conlig",
		time.Thursday:  "Millisle & Carrowdore",
	},
	{
		time.Monday:    "Ards & Bangor",
		time.Tuesday:   "Greyabbey & Kircubbin",
		time.Wednesday: "Newtownards",
		time.Thursday:  "Crawfordsburn & Helen's Bay",
	},
	{
		time.Monday:    "Bangor Central",
		time.Tuesday:   "Portavogie & Cloughey",
		time.Wednesday: "Comber & Killinchy",
		time.Thursday:  "Donaghadee",
	},
}

// WeekIndex returns which week of the 4-week cycle the given date falls in,
// always in [0,3]. Dates before the anchor produce negative week counts,
// which are wrapped back into range.
func WeekIndex(t time.Time) int {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := int(day.Sub(anchor).Hours()) / 24
	weeks := floorDiv(days, 7)
	return ((weeks % 4) + 4) % 4
}

// AreaFor returns the service area covered on the given date. The second
// return is false on Fridays (office day) and weekends (closed).
func AreaFor(t time.Time) (string, bool) {
	area, ok := table[WeekIndex(t)][t.Weekday()]
	return area, ok
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
