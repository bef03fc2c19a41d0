// Package solarcal uses sixdouglas/suncalc's solar-position lookup as
// a clear-sky sanity check: a region's profile_override solar series
// is flagged when it reports non-zero output at an hour the sun is
// below the horizon at that region's coordinates.
package solarcal

import (
	"fmt"

	"github.com/sixdouglas/suncalc"

	"github.com/devskill-org/gridopt/internal/apperror"
	"github.com/devskill-org/gridopt/internal/series"
)

// NightOutputEpsilon is the fraction of nominal capacity above which a
// below-horizon hour's reported solar output is considered a data
// error rather than noise.
const NightOutputEpsilon = 1e-3

// SolarAltitudes returns, for every hour in idx, the sun's altitude in
// radians above the horizon at (latitude, longitude). Negative values
// mean the sun is below the horizon.
func SolarAltitudes(idx series.DatetimeIndex, latitude, longitude float64) []float64 {
	out := make([]float64, idx.Len())
	for t := 0; t < idx.Len(); t++ {
		pos := suncalc.GetPosition(idx.At(t), latitude, longitude)
		out[t] = pos.Altitude
	}
	return out
}

// CheckProfileOverride reports a DataError if col (a normalized solar
// production curve, values in [0,1]) is non-negligible at any hour the
// sun is below the horizon at (latitude, longitude).
func CheckProfileOverride(region string, idx series.DatetimeIndex, col []float64, latitude, longitude float64) error {
	altitudes := SolarAltitudes(idx, latitude, longitude)
	for t, alt := range altitudes {
		if alt >= 0 {
			continue
		}
		if col[t] > NightOutputEpsilon {
			return apperror.NewDataError(region, "Solar",
				fmt.Sprintf("profile_override reports %.4f output at hour %d while the sun is below the horizon (altitude %.4f rad)", col[t], t, alt))
		}
	}
	return nil
}

// DaylightHours counts the hours in idx the sun is above the horizon
// at (latitude, longitude). No other package calls it.
func DaylightHours(idx series.DatetimeIndex, latitude, longitude float64) int {
	count := 0
	for _, alt := range SolarAltitudes(idx, latitude, longitude) {
		if alt > 0 {
			count++
		}
	}
	return count
}
