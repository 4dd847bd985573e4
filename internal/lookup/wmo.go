package lookup

// UnknownConditions is the fallback description for weather codes the
// table does not cover. An unrecognized code never fails a lookup.
const UnknownConditions = "unknown conditions"

// wmoDescriptions maps WMO weather interpretation codes to spoken-English
// descriptions. The code space is 0-99 but sparse; only codes open-meteo
// actually emits are listed.
var wmoDescriptions = map[int]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "foggy",
	48: "depositing rime fog",
	51: "light drizzle",
	53: "moderate drizzle",
	55: "dense drizzle",
	61: "slight rain",
	63: "moderate rain",
	65: "heavy rain",
	71: "slight snow",
	73: "moderate snow",
	75: "heavy snow",
	77: "snow grains",
	80: "slight rain showers",
	81: "moderate rain showers",
	82: "violent rain showers",
	85: "slight snow showers",
	86: "heavy snow showers",
	95: "thunderstorm",
	96: "thunderstorm with slight hail",
	99: "thunderstorm with heavy hail",
}

// DescribeWeatherCode translates a WMO code into a human-readable
// description, falling back to UnknownConditions for unmapped codes.
func DescribeWeatherCode(code int) string {
	if desc, ok := wmoDescriptions[code]; ok {
		return desc
	}
	return UnknownConditions
}
