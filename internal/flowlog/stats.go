package flowlog

import (
	"math"
	"sort"
	"time"

	"sdnsim/internal/model"
)

// Summary is a basic statistics snapshot over exported flows.
type Summary struct {
	Count       int
	From        time.Duration
	To          time.Duration
	AvgDelay    float64
	AvgQuality  float64
	MinQuality  float64
	MaxQuality  float64
	P95Quality  float64
	FlowsByLink map[int]int
}

// Summarize computes summary metrics for flows recorded at or after since.
func Summarize(items []model.FlowRecord, since time.Duration) Summary {
	filtered := make([]model.FlowRecord, 0, len(items))
	for _, rec := range items {
		if rec.Timestamp >= since {
			filtered = append(filtered, rec)
		}
	}

	if len(filtered) == 0 {
		return Summary{Count: 0, FlowsByLink: map[int]int{}}
	}

	values := make([]float64, 0, len(filtered))
	var sumDelay, sumQuality float64
	minQuality := filtered[0].PathQuality
	maxQuality := filtered[0].PathQuality
	from := filtered[0].Timestamp
	to := filtered[0].Timestamp
	byLink := make(map[int]int)

	for _, rec := range filtered {
		values = append(values, rec.PathQuality)
		sumDelay += rec.PathDelay
		sumQuality += rec.PathQuality
		byLink[rec.ChosenLink]++
		if rec.PathQuality < minQuality {
			minQuality = rec.PathQuality
		}
		if rec.PathQuality > maxQuality {
			maxQuality = rec.PathQuality
		}
		if rec.Timestamp < from {
			from = rec.Timestamp
		}
		if rec.Timestamp > to {
			to = rec.Timestamp
		}
	}

	sort.Float64s(values)
	count := float64(len(filtered))

	return Summary{
		Count:       len(filtered),
		From:        from,
		To:          to,
		AvgDelay:    sumDelay / count,
		AvgQuality:  sumQuality / count,
		MinQuality:  minQuality,
		MaxQuality:  maxQuality,
		P95Quality:  percentile(values, 0.95),
		FlowsByLink: byLink,
	}
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if p <= 0 {
		return values[0]
	}
	if p >= 1 {
		return values[len(values)-1]
	}
	idx := int(math.Ceil(p*float64(len(values)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(values) {
		idx = len(values) - 1
	}
	return values[idx]
}
