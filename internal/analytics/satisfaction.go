package analytics

import "math"

// MaxStars is the top of the star scale; scores are on a 0-100 scale.
const MaxStars = 5

const pointsPerStar = 100 / MaxStars

// StarShare is the tally for one star rating.
type StarShare struct {
	Stars      int `json:"stars"`
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

// StarRating maps a 0-100 score to 1-5 stars: ceil(score/20) clamped.
func StarRating(score float64) int {
	if math.IsNaN(score) {
		return 1
	}
	star := math.Ceil(score / pointsPerStar)
	switch {
	case star < 1:
		return 1
	case star > MaxStars:
		return MaxStars
	}
	return int(star)
}

// Distribution tallies scores per star rating and expresses each tally as
// a whole percentage of all scores. The result always has five entries,
// ordered from 5 stars down to 1. Percentages are rounded independently
// and may not sum to exactly 100.
func Distribution(scores []float64) []StarShare {
	var counts [MaxStars]int
	for _, s := range scores {
		counts[StarRating(s)-1]++
	}

	total := len(scores)
	shares := make([]StarShare, 0, MaxStars)
	for star := MaxStars; star >= 1; star-- {
		count := counts[star-1]
		pct := 0
		if total > 0 {
			pct = int(Round(float64(count)/float64(total)*100, 0))
		}
		shares = append(shares, StarShare{Stars: star, Count: count, Percentage: pct})
	}
	return shares
}

// AverageRating is the mean score expressed in stars with one decimal
// place, or 0 when there are no scores. NaN scores are ignored.
func AverageRating(scores []float64) float64 {
	var sum float64
	var n int
	for _, s := range scores {
		if math.IsNaN(s) {
			continue
		}
		sum += s
		n++
	}
	if n == 0 {
		return 0
	}
	return Round(sum/float64(n)/pointsPerStar, 1)
}
