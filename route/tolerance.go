package route

import "github.com/shaydu/carthorse/config"

// withinTol reports whether actual is within pct (a fraction, e.g. 0.1 for
// 10%) of target. A zero target matches only an exact-zero actual.
func withinTol(actual, target, pct float64) bool {
	if target == 0 {
		return actual == 0
	}
	delta := actual - target
	if delta < 0 {
		delta = -delta
	}
	return delta/target <= pct
}

// matchesAtLevel is the one tolerance model every search shape (loop,
// out-and-back, point-to-point) uses: a candidate matches iff its
// distance/gain fall within tol's width of the target (spec §4.5.3's
// "tried in increasing width"), widened further to the pattern's own
// tolerance_percent when that is looser — so a pattern's explicit
// tolerance (spec §3's RoutePattern.tolerance_percent) is never silently
// overridden by a narrower configured level.
func matchesAtLevel(distanceKM, gainM, targetDistanceKM, targetGainM, patTolerancePercent float64, tol config.ToleranceLevel) bool {
	patFraction := patTolerancePercent / 100

	distPct := tol.DistancePct
	if patFraction > distPct {
		distPct = patFraction
	}
	elevPct := tol.ElevationPct
	if patFraction > elevPct {
		elevPct = patFraction
	}
	return withinTol(distanceKM, targetDistanceKM, distPct) && withinTol(gainM, targetGainM, elevPct)
}
