// Package aggregate holds streaming accumulators used by the stats engine.
package aggregate

import (
	"github.com/influxdata/tdigest"
)

// RunningAverage accumulates a mean in O(1) per sample. The zero value is
// ready to use and reports 0 until the first sample.
type RunningAverage struct {
	n    uint64
	mean float64
}

// Add folds x into the mean.
func (r *RunningAverage) Add(x float64) {
	r.n++
	r.mean += (x - r.mean) / float64(r.n)
}

// Average returns the current mean, or 0 when nothing was added.
func (r *RunningAverage) Average() float64 {
	if r.n == 0 {
		return 0
	}
	return r.mean
}

// Count returns the number of samples added.
func (r *RunningAverage) Count() uint64 {
	return r.n
}

const defaultCompression = 100

// Distribution tracks a mean together with approximate quantiles.
type Distribution struct {
	RunningAverage
	digest *tdigest.TDigest
}

// NewDistribution returns an empty distribution.
func NewDistribution() *Distribution {
	return &Distribution{digest: tdigest.NewWithCompression(defaultCompression)}
}

// Add records x.
func (d *Distribution) Add(x float64) {
	d.RunningAverage.Add(x)
	d.digest.Add(x, 1)
}

// Quantile returns the approximate q-quantile (0..1), or 0 when empty.
func (d *Distribution) Quantile(q float64) float64 {
	if d.Count() == 0 {
		return 0
	}
	return d.digest.Quantile(q)
}
