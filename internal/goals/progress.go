package goals

import (
	"math"

	"github.com/2beens/fittrack/pkg"
)

// Reached tells whether current has hit target, in the direction start -> target.
// A goal with target == start counts as pointing up.
func Reached(start, target, current float64) bool {
	if target < start {
		return current <= target
	}
	return current >= target
}

// Progress returns how far current is from start towards target, in percent,
// clamped to [0, 100] and truncated to 2 decimals.
func Progress(start, target, current float64) float64 {
	if target == start {
		if Reached(start, target, current) {
			return 100
		}
		return 0
	}
	p := (current - start) / (target - start) * 100
	p = math.Max(0, math.Min(100, p))
	return pkg.Truncate2(p)
}
