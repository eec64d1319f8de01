package stats

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// Summary describes the distribution of per-frame track times in seconds.
type Summary struct {
	Samples int
	Median  float64
	Mean    float64
	Min     float64
	Max     float64
	Total   float64
}

// Summarize computes the timing summary over the recorded track durations.
func Summarize(durations []float64) (Summary, error) {
	if len(durations) == 0 {
		return Summary{}, fmt.Errorf("no track durations recorded")
	}
	data := stats.Float64Data(durations)
	median, err := data.Median()
	if err != nil {
		return Summary{}, err
	}
	mean, err := data.Mean()
	if err != nil {
		return Summary{}, err
	}
	min, err := data.Min()
	if err != nil {
		return Summary{}, err
	}
	max, err := data.Max()
	if err != nil {
		return Summary{}, err
	}
	total, err := data.Sum()
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Samples: len(durations),
		Median:  median,
		Mean:    mean,
		Min:     min,
		Max:     max,
		Total:   total,
	}, nil
}
