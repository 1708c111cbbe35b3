// Package mood turns per-track valence scores into an overall mood.
package mood

import "errors"

// Threshold separates happy from sad valences.
const Threshold = 0.5

// ErrInsufficientData is returned when there is nothing to average.
var ErrInsufficientData = errors.New("not enough listening data")

// Label names an overall mood.
type Label string

const (
	Happy   Label = "Happy"
	Neutral Label = "Neutral"
	Sad     Label = "Sad"
)

func (l Label) String() string {
	return string(l)
}

// Result is the classification of a set of valences.
type Result struct {
	Label Label
	Mean  float64
}

// Classify averages valences and labels the mean.
func Classify(valences []float64) (Result, error) {
	if len(valences) == 0 {
		return Result{}, ErrInsufficientData
	}

	var sum float64
	for _, v := range valences {
		sum += v
	}
	mean := sum / float64(len(valences))

	switch {
	case mean > Threshold:
		return Result{Label: Happy, Mean: mean}, nil
	case mean == Threshold:
		return Result{Label: Neutral, Mean: mean}, nil
	default:
		return Result{Label: Sad, Mean: mean}, nil
	}
}

// IsHappy reports whether a single track's valence qualifies it for a
// happy playlist.
func IsHappy(valence float64) bool {
	return valence > Threshold
}
