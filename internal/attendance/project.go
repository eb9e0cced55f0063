package attendance

import "math"

// Tolerance absorbs floating point error when comparing the current ratio
// against the required one. A ratio inside the band counts as meeting it.
const Tolerance = 1e-6

// maxCount bounds projected class counts to values a float64 holds exactly.
const maxCount = 1 << 53

type Status string

const (
	StatusUndefined Status = "undefined"
	StatusBelow     Status = "below"
	StatusAbove     Status = "above"
)

type Projection struct {
	Status             Status  `json:"status"`
	CurrentPercentage  float64 `json:"currentPercentage"`
	RequiredPercentage float64 `json:"requiredPercentage"`

	// Below the threshold.
	NeededClasses int  `json:"neededClasses,omitempty"`
	Unreachable   bool `json:"unreachable,omitempty"`

	// At or above the threshold.
	BunkableClasses int     `json:"bunkableClasses"`
	FinalTotal      int     `json:"finalTotal,omitempty"`
	FinalPercentage float64 `json:"finalPercentage,omitempty"`
	Unlimited       bool    `json:"unlimited,omitempty"`
}

// Project classifies an attendance snapshot against the required percentage
// and derives either the classes still needed or the classes that can be
// skipped. It assumes 0 <= present <= total; callers validate that first.
func Project(present, total int, requiredPercentage float64) Projection {
	out := Projection{
		Status:             StatusUndefined,
		RequiredPercentage: requiredPercentage,
	}
	if total <= 0 || math.IsNaN(requiredPercentage) {
		return out
	}

	required := requiredPercentage / 100
	out.CurrentPercentage = percentage(present, total)

	if below(present, total, required) {
		out.Status = StatusBelow
		needed, ok := neededClasses(present, total, required)
		if !ok {
			out.Unreachable = true
			return out
		}
		out.NeededClasses = needed
		return out
	}

	out.Status = StatusAbove
	bunkable, ok := bunkableClasses(present, total, required)
	if !ok {
		out.Unlimited = true
		out.FinalTotal = total
		out.FinalPercentage = out.CurrentPercentage
		return out
	}
	out.BunkableClasses = bunkable
	out.FinalTotal = total + bunkable
	out.FinalPercentage = percentage(present, out.FinalTotal)
	return out
}

func below(present, total int, required float64) bool {
	return float64(present)/float64(total) < required-Tolerance
}

// neededClasses returns the smallest k such that attending k more classes in
// a row lifts the snapshot out of the below branch. The estimate is solved
// against the same tolerant threshold below uses, so the correction loops
// only absorb rounding.
func neededClasses(present, total int, required float64) (int, bool) {
	if required >= 1 {
		return 0, false
	}
	threshold := required - Tolerance
	estimate := math.Ceil((threshold*float64(total) - float64(present)) / (1 - threshold))
	if math.IsInf(estimate, 0) || math.IsNaN(estimate) || estimate > maxCount {
		return 0, false
	}
	k := int(math.Max(estimate, 0))
	for below(present+k, total+k, required) {
		k++
	}
	for k > 0 && !below(present+k-1, total+k-1, required) {
		k--
	}
	return k, true
}

// bunkableClasses returns the largest b such that present/(total+b) still
// meets the required ratio.
func bunkableClasses(present, total int, required float64) (int, bool) {
	if required <= 0 {
		return 0, false
	}
	estimate := math.Floor(float64(present)/required) - float64(total)
	if math.IsInf(estimate, 0) || estimate > maxCount {
		return 0, false
	}
	b := int(math.Max(estimate, 0))
	for meets(present, total+b+1, required) {
		b++
	}
	for b > 0 && !meets(present, total+b, required) {
		b--
	}
	return b, true
}

func meets(present, total int, required float64) bool {
	return float64(present)/float64(total) >= required
}

func percentage(present, total int) float64 {
	return float64(present) / float64(total) * 100
}
