package timezone

import (
	"strings"
	"time"
)

var (
	KST *time.Location // UTC+9 - Korea
	JST *time.Location // UTC+9 - Japan
	UTC = time.UTC
)

func init() {
	KST = time.FixedZone("KST", 9*60*60)
	JST = time.FixedZone("JST", 9*60*60)
}

var airportTimezones = map[string]string{
	// KST (UTC+9) - Korea
	"PUS": "KST", // Busan - Gimhae
	"ICN": "KST", // Seoul - Incheon
	"GMP": "KST", // Seoul - Gimpo
	"CJU": "KST", // Jeju
	"TAE": "KST", // Daegu
	"CJJ": "KST", // Cheongju

	// JST (UTC+9) - Japan
	"NRT": "JST", // Tokyo - Narita
	"HND": "JST", // Tokyo - Haneda
	"KIX": "JST", // Osaka - Kansai
	"ITM": "JST", // Osaka - Itami
	"FUK": "JST", // Fukuoka
	"CTS": "JST", // Sapporo - New Chitose
	"OKA": "JST", // Okinawa - Naha
	"NGO": "JST", // Nagoya - Chubu
}

// GetTimezoneByAirport returns the zone name of a known airport, "UTC"
// otherwise.
func GetTimezoneByAirport(code string) string {
	if tz, ok := airportTimezones[strings.ToUpper(code)]; ok {
		return tz
	}
	return "UTC"
}

func GetLocationByAirport(code string) *time.Location {
	switch GetTimezoneByAirport(code) {
	case "KST":
		return KST
	case "JST":
		return JST
	default:
		return UTC
	}
}

// LocalDate is the calendar date at the airport at instant t, as midnight
// UTC so it can be compared with parsed search dates.
func LocalDate(t time.Time, airportCode string) time.Time {
	local := t.In(GetLocationByAirport(airportCode))
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
