package common

import "math"

// WrapLon180 maps any longitude in degrees into [-180, 180).
func WrapLon180(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// WrapLon360 maps any longitude in degrees into [0, 360).
func WrapLon360(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	return lon
}
