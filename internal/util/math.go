package util

import "math"

// Avg calculates the average of all values in the given array
func Avg(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < len(values); i++ {
		sum += values[i]
	}
	return sum / (float64(len(values)))
}

// Coerce returns a value that is at least min and at most max
func Coerce(value float64, min float64, max float64) float64 {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}

// Ratio calculates the ration that target has in comparison to rangeMin and rangeMax
// Make sure that:
// rangeMin <= target <= rangeMax
// rangeMax - rangeMin != 0
func Ratio(target float64, rangeMin float64, rangeMax float64) float64 {
	return (target - rangeMin) / (rangeMax - rangeMin)
}

// UpdateSimpleMovingAvg calculates the new moving average, based on an existing average and buffer size
func UpdateSimpleMovingAvg(oldAvg float64, n int, newValue float64) float64 {
	return oldAvg + (1/float64(n))*(newValue-oldAvg)
}

// CountsToRpm converts a number of encoder counts measured over dt seconds
// to revolutions per minute. Returns 0 for a non-positive dt or cpr.
func CountsToRpm(counts int32, countsPerRevolution float64, dt float64) float64 {
	if !(dt > 0) || !(countsPerRevolution > 0) {
		return 0
	}
	revolutions := float64(counts) / countsPerRevolution
	return revolutions * (60.0 / dt)
}

// RpmToCountsPerSecond converts revolutions per minute to encoder counts per second
func RpmToCountsPerSecond(rpm float64, countsPerRevolution float64) float64 {
	return rpm / 60.0 * countsPerRevolution
}

// Round rounds the value to the given number of decimal places
func Round(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
