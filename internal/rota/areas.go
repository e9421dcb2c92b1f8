package rota

import "strings"

// AreaUnknown is returned for addresses the classifier cannot place. It
// never matches a rota area, so such bookings end up rejected rather than
// scheduled into the wrong run.
const AreaUnknown = "Unknown"

// Postcode districts covered by the business, most specific first.
var postcodeAreas = []struct {
	prefix string
	area   string
}{
	{"BT19", "Bangor"},
	{"BT20", "Bangor"},
	{"BT21", "Donaghadee"},
	{"BT22", "Ards"},
	{"BT23", "Newtownards"},
	{"BT18", "Holywood"},
}

// Town names matched as substrings of the locality, in priority order.
// "Newtownards" must come before "Ards" or peninsula addresses would be
// shadowed by the longer town name containing it.
var localityAreas = []struct {
	town string
	area string
}{
	{"newtownards", "Newtownards"},
	{"groomsport", "Bangor"},
	{"crawfordsburn", "Bangor"},
	{"conlig", "Conlig"},
	{"donaghadee", "Donaghadee"},
	{"millisle", "Millisle"},
	{"comber", "Comber"},
	{"holywood", "Holywood"},
	{"bangor", "Bangor"},
	{"ards", "Ards"},
}

// AreaForAddress derives a customer's service area from their postcode and
// free-text locality. Postcode districts win over locality text; unresolved
// addresses map to AreaUnknown.
func AreaForAddress(postcode, locality string) string {
	pc := strings.ToUpper(strings.ReplaceAll(postcode, " ", ""))
	for _, p := range postcodeAreas {
		if strings.HasPrefix(pc, p.prefix) {
			return p.area
		}
	}
	loc := strings.ToLower(locality)
	for _, l := range localityAreas {
		if strings.Contains(loc, l.town) {
			return l.area
		}
	}
	return AreaUnknown
}
