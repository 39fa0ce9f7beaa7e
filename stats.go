package main

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats is the descriptive summary of one dataset. Float fields are rounded
// to four decimals; Skewness and CoefficientOfVariation are nil when their
// formula would divide by zero, and the field names are listed in Undefined.
type Stats struct {
	Count                  int      `json:"count"`
	Sum                    float64  `json:"sum"`
	Mean                   float64  `json:"mean"`
	Median                 float64  `json:"median"`
	Mode                   float64  `json:"mode"`
	Variance               float64  `json:"variance"`
	StdDev                 float64  `json:"stdDev"`
	Min                    float64  `json:"min"`
	Max                    float64  `json:"max"`
	Range                  float64  `json:"range"`
	Q1                     float64  `json:"q1"`
	Q3                     float64  `json:"q3"`
	IQR                    float64  `json:"iqr"`
	Skewness               *float64 `json:"skewness"`
	CoefficientOfVariation *float64 `json:"coefficientOfVariation"`
	Undefined              []string `json:"undefined,omitempty"`
}

const statsPrecision = 4

func calculateStatistics(samples []float64) (Stats, error) {
	if len(samples) == 0 {
		return Stats{}, ErrEmptyData
	}
	if err := requireFinite(samples); err != nil {
		return Stats{}, err
	}
	s := slices.Clone(samples)
	slices.Sort(s)
	n := len(s)
	lo := s[0]
	hi := s[n-1]

	sum := floats.Sum(s)
	mean := sum / float64(n)

	// Identical values have no spread; the compensated estimate can land a
	// hair either side of zero otherwise.
	var variance float64
	if lo != hi {
		variance = math.Max(stat.PopVariance(s, nil), 0)
	}
	stddev := math.Sqrt(variance)

	median := medianOfSorted(s)
	q1 := s[n/4]
	q3 := s[3*n/4]

	skew, skewErr := pearsonSkewness(mean, median, stddev)
	cv, cvErr := coefficientOfVariation(stddev, mean)
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"sum", sum}, {"range", hi - lo}, {"variance", variance}, {"iqr", q3 - q1},
		{"skewness", skew}, {"coefficientOfVariation", cv},
	} {
		if !isFinite(f.value) {
			return Stats{}, fmt.Errorf("%w: %s exceeds the float64 range", ErrInvalidInput, f.name)
		}
	}

	out := Stats{
		Count:    n,
		Sum:      round(sum, statsPrecision),
		Mean:     round(mean, statsPrecision),
		Median:   round(median, statsPrecision),
		Mode:     round(modeOfSorted(s), statsPrecision),
		Variance: round(variance, statsPrecision),
		StdDev:   round(stddev, statsPrecision),
		Min:      round(lo, statsPrecision),
		Max:      round(hi, statsPrecision),
		Range:    round(hi-lo, statsPrecision),
		Q1:       round(q1, statsPrecision),
		Q3:       round(q3, statsPrecision),
		IQR:      round(q3-q1, statsPrecision),
	}

	if skewErr == nil {
		out.Skewness = roundedPtr(skew)
	} else {
		out.Undefined = append(out.Undefined, "skewness")
	}
	if cvErr == nil {
		out.CoefficientOfVariation = roundedPtr(cv)
	} else {
		out.Undefined = append(out.Undefined, "coefficientOfVariation")
	}
	return out, nil
}

func medianOfSorted(s []float64) float64 {
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	if m := (s[n/2-1] + s[n/2]) / 2.0; isFinite(m) {
		return m
	}
	return s[n/2-1]/2 + s[n/2]/2
}

// modeOfSorted returns the most frequent value. Ties go to the smallest value.
func modeOfSorted(s []float64) float64 {
	mode := s[0]
	best := 0
	for i := 0; i < len(s); {
		j := i + 1
		for j < len(s) && s[j] == s[i] {
			j++
		}
		if run := j - i; run > best {
			best = run
			mode = s[i]
		}
		i = j
	}
	return mode
}

// pearsonSkewness is Pearson's second coefficient, 3(mean-median)/stddev.
func pearsonSkewness(mean, median, stddev float64) (float64, error) {
	if stddev == 0 {
		return 0, fmt.Errorf("%w: skewness of a dataset with zero standard deviation", ErrUndefinedStatistic)
	}
	return 3 * (mean - median) / stddev, nil
}

// coefficientOfVariation is the standard deviation as a percentage of the mean.
func coefficientOfVariation(stddev, mean float64) (float64, error) {
	if mean == 0 {
		return 0, fmt.Errorf("%w: coefficient of variation of a dataset with zero mean", ErrUndefinedStatistic)
	}
	return stddev / mean * 100, nil
}

// round keeps values of 1e15 and above as they are: they carry no fraction
// worth rounding and scaling them can overflow.
func round(v float64, places int) float64 {
	if math.Abs(v) >= 1e15 {
		return v
	}
	p := math.Pow10(places)
	scaled := v * p
	if !isFinite(scaled) {
		return v
	}
	return math.Round(scaled) / p
}

func roundedPtr(v float64) *float64 {
	r := round(v, statsPrecision)
	return &r
}
