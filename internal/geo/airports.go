// Package geo holds the static airport table used for detour and
// ground-transport estimates.
package geo

import (
	"math"
	"strings"
)

type Airport struct {
	Code string
	City string
	Lat  float64
	Lon  float64
	Hub  bool
}

var airports = map[string]Airport{
	// North America
	"JFK": {Code: "JFK", City: "New York", Lat: 40.6413, Lon: -73.7781, Hub: true},
	"EWR": {Code: "EWR", City: "Newark", Lat: 40.6895, Lon: -74.1745},
	"LGA": {Code: "LGA", City: "New York", Lat: 40.7769, Lon: -73.8740},
	"BOS": {Code: "BOS", City: "Boston", Lat: 42.3656, Lon: -71.0096},
	"PHL": {Code: "PHL", City: "Philadelphia", Lat: 39.8729, Lon: -75.2437},
	"IAD": {Code: "IAD", City: "Washington", Lat: 38.9531, Lon: -77.4565},
	"DCA": {Code: "DCA", City: "Washington", Lat: 38.8512, Lon: -77.0402},
	"ATL": {Code: "ATL", City: "Atlanta", Lat: 33.6407, Lon: -84.4277, Hub: true},
	"MIA": {Code: "MIA", City: "Miami", Lat: 25.7959, Lon: -80.2870, Hub: true},
	"MCO": {Code: "MCO", City: "Orlando", Lat: 28.4312, Lon: -81.3081},
	"ORD": {Code: "ORD", City: "Chicago", Lat: 41.9742, Lon: -87.9073, Hub: true},
	"MDW": {Code: "MDW", City: "Chicago", Lat: 41.7868, Lon: -87.7522},
	"DTW": {Code: "DTW", City: "Detroit", Lat: 42.2162, Lon: -83.3554},
	"MSP": {Code: "MSP", City: "Minneapolis", Lat: 44.8848, Lon: -93.2223},
	"DFW": {Code: "DFW", City: "Dallas", Lat: 32.8998, Lon: -97.0403, Hub: true},
	"IAH": {Code: "IAH", City: "Houston", Lat: 29.9902, Lon: -95.3368},
	"AUS": {Code: "AUS", City: "Austin", Lat: 30.1975, Lon: -97.6664},
	"DEN": {Code: "DEN", City: "Denver", Lat: 39.8561, Lon: -104.6737, Hub: true},
	"SLC": {Code: "SLC", City: "Salt Lake City", Lat: 40.7899, Lon: -111.9791},
	"PHX": {Code: "PHX", City: "Phoenix", Lat: 33.4373, Lon: -112.0078},
	"LAS": {Code: "LAS", City: "Las Vegas", Lat: 36.0840, Lon: -115.1537},
	"LAX": {Code: "LAX", City: "Los Angeles", Lat: 33.9416, Lon: -118.4085, Hub: true},
	"BUR": {Code: "BUR", City: "Burbank", Lat: 34.1983, Lon: -118.3574},
	"SNA": {Code: "SNA", City: "Santa Ana", Lat: 33.6762, Lon: -117.8675},
	"SAN": {Code: "SAN", City: "San Diego", Lat: 32.7338, Lon: -117.1933},
	"SFO": {Code: "SFO", City: "San Francisco", Lat: 37.6213, Lon: -122.3790, Hub: true},
	"OAK": {Code: "OAK", City: "Oakland", Lat: 37.7126, Lon: -122.2197},
	"SJC": {Code: "SJC", City: "San Jose", Lat: 37.3639, Lon: -121.9289},
	"SEA": {Code: "SEA", City: "Seattle", Lat: 47.4502, Lon: -122.3088, Hub: true},
	"PDX": {Code: "PDX", City: "Portland", Lat: 45.5898, Lon: -122.5951},
	"HNL": {Code: "HNL", City: "Honolulu", Lat: 21.3187, Lon: -157.9225},
	"YYZ": {Code: "YYZ", City: "Toronto", Lat: 43.6777, Lon: -79.6248, Hub: true},
	"YVR": {Code: "YVR", City: "Vancouver", Lat: 49.1967, Lon: -123.1815},

	// Europe
	"LHR": {Code: "LHR", City: "London", Lat: 51.4700, Lon: -0.4543, Hub: true},
	"LGW": {Code: "LGW", City: "London", Lat: 51.1537, Lon: -0.1821},
	"CDG": {Code: "CDG", City: "Paris", Lat: 49.0097, Lon: 2.5479, Hub: true},
	"ORY": {Code: "ORY", City: "Paris", Lat: 48.7262, Lon: 2.3652},
	"AMS": {Code: "AMS", City: "Amsterdam", Lat: 52.3105, Lon: 4.7683, Hub: true},
	"FRA": {Code: "FRA", City: "Frankfurt", Lat: 50.0379, Lon: 8.5622, Hub: true},
	"MUC": {Code: "MUC", City: "Munich", Lat: 48.3538, Lon: 11.7861},
	"ZRH": {Code: "ZRH", City: "Zurich", Lat: 47.4582, Lon: 8.5555},
	"MAD": {Code: "MAD", City: "Madrid", Lat: 40.4983, Lon: -3.5676},
	"BCN": {Code: "BCN", City: "Barcelona", Lat: 41.2974, Lon: 2.0833},
	"FCO": {Code: "FCO", City: "Rome", Lat: 41.8003, Lon: 12.2389},
	"IST": {Code: "IST", City: "Istanbul", Lat: 41.2753, Lon: 28.7519, Hub: true},

	// Middle East & Asia-Pacific
	"DXB": {Code: "DXB", City: "Dubai", Lat: 25.2532, Lon: 55.3657, Hub: true},
	"DOH": {Code: "DOH", City: "Doha", Lat: 25.2731, Lon: 51.6081, Hub: true},
	"SIN": {Code: "SIN", City: "Singapore", Lat: 1.3644, Lon: 103.9915, Hub: true},
	"HKG": {Code: "HKG", City: "Hong Kong", Lat: 22.3080, Lon: 113.9185, Hub: true},
	"NRT": {Code: "NRT", City: "Tokyo", Lat: 35.7720, Lon: 140.3929, Hub: true},
	"HND": {Code: "HND", City: "Tokyo", Lat: 35.5494, Lon: 139.7798},
	"ICN": {Code: "ICN", City: "Seoul", Lat: 37.4602, Lon: 126.4407, Hub: true},
	"BKK": {Code: "BKK", City: "Bangkok", Lat: 13.6900, Lon: 100.7501},
	"CGK": {Code: "CGK", City: "Jakarta", Lat: -6.1256, Lon: 106.6559},
	"DPS": {Code: "DPS", City: "Bali", Lat: -8.7482, Lon: 115.1672},
	"SYD": {Code: "SYD", City: "Sydney", Lat: -33.9399, Lon: 151.1753, Hub: true},
	"MEL": {Code: "MEL", City: "Melbourne", Lat: -37.6690, Lon: 144.8410},
}

func Lookup(code string) (Airport, bool) {
	a, ok := airports[strings.ToUpper(code)]
	return a, ok
}

func City(code string) string {
	if a, ok := Lookup(code); ok {
		return a.City
	}
	return code
}

// IsHub reports whether the airport is a major connecting hub, the only
// airports offered as stopover destinations.
func IsHub(code string) bool {
	a, ok := Lookup(code)
	return ok && a.Hub
}

const earthRadiusMiles = 3958.8

// DistanceMiles returns the great-circle distance between two airports.
// The second return is false when either code is unknown.
func DistanceMiles(from, to string) (float64, bool) {
	a, okA := Lookup(from)
	b, okB := Lookup(to)
	if !okA || !okB {
		return 0, false
	}

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMiles * c, true
}

// GroundTransferHours estimates surface travel time between two airports,
// assuming roughly 55 mph door to door. Used for open-jaw feasibility.
func GroundTransferHours(from, to string) (float64, bool) {
	miles, ok := DistanceMiles(from, to)
	if !ok {
		return 0, false
	}
	return miles / 55.0, true
}
