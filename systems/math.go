package systems

import "math"

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps a float32 value to the [0, 1] range.
func clamp01(v float32) float32 {
	return clampFloat(v, 0, 1)
}

// lerp blends a toward b by t, with t clamped to [0, 1].
func lerp(a, b, t float32) float32 {
	return a + (b-a)*clamp01(t)
}

func toRadians(deg float32) float32 { return deg * math.Pi / 180 }
func toDegrees(rad float32) float32 { return rad * 180 / math.Pi }

func sin(rad float32) float32 { return float32(math.Sin(float64(rad))) }
