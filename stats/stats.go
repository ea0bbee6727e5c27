// Package stats computes descriptive statistics over float64 values.
// Variance and Stdev are population statistics (divisor n).
package stats

import (
	"errors"
	"math"
)

// ErrEmptyInput is returned when a statistic is requested for zero values.
var ErrEmptyInput = errors.New("stats: empty input")

// AggFunc is the shape shared by Average, Variance and Stdev.
type AggFunc func(...float64) (float64, error)

// Number covers the input types Floats converts.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Floats copies values into a new []float64.
func Floats[T Number](values []T) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

func Sum(values ...float64) float64 {
	var sum float64
	for _, val := range values {
		sum += val
	}
	return sum
}

// Average returns the arithmetic mean of values.
// If every value equals the first, that value is returned as is.
func Average(values ...float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyInput
	}
	first := values[0]
	for _, val := range values[1:] {
		if val != first {
			return Sum(values...) / float64(len(values)), nil
		}
	}
	return first, nil
}

// Variance returns the population variance, the mean squared deviation
// from Average(values...).
func Variance(values ...float64) (float64, error) {
	mean, err := Average(values...)
	if err != nil {
		return 0, err
	}
	return variance(values, mean), nil
}

// variance expects a non-empty values and its mean.
func variance(values []float64, mean float64) float64 {
	var sumSq float64
	for _, val := range values {
		d := val - mean
		sumSq += d * d
	}
	return sumSq / float64(len(values))
}

// Stdev returns the population standard deviation.
func Stdev(values ...float64) (float64, error) {
	v, err := Variance(values...)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// Summary holds all three statistics for one input.
type Summary struct {
	Count    int
	Average  float64
	Variance float64
	Stdev    float64
}

// Describe computes all three statistics for values.
func Describe(values ...float64) (Summary, error) {
	mean, err := Average(values...)
	if err != nil {
		return Summary{}, err
	}
	v := variance(values, mean)
	return Summary{
		Count:    len(values),
		Average:  mean,
		Variance: v,
		Stdev:    math.Sqrt(v),
	}, nil
}
