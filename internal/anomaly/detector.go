// Package anomaly classifies daily consumption values against the
// household's own history.
//
// The detector degrades through three modes depending on how much usable
// history exists: a fitted quantile model, a z-score test over the
// running mean/std, and finally fixed absolute thresholds. Degradation
// is silent to callers of Classify; Mode exposes it for tests and
// diagnostics.
package anomaly

import (
	"math"
	"sort"
	"sync"

	"github.com/wattwise/wattwise/pkg/models"
)

// Mode identifies which decision rule the detector is currently using.
type Mode int

const (
	// Untrained means no usable history: fixed thresholds apply.
	Untrained Mode = iota
	// StatisticalOnly means mean/std are known but variance was too low
	// to fit the quantile model: the z-score test applies.
	StatisticalOnly
	// Fitted means the quantile model is active.
	Fitted
)

func (m Mode) String() string {
	switch m {
	case Fitted:
		return "fitted"
	case StatisticalOnly:
		return "statistical"
	default:
		return "untrained"
	}
}

const (
	// minDataPoints is the minimum number of valid history points needed
	// before training does anything.
	minDataPoints = 5
	// minStd is the variance floor below which the quantile model is not
	// fit; near-constant usage makes fences meaningless.
	minStd = 0.1
	// zScoreLimit is the statistical-mode decision boundary.
	zScoreLimit = 2.5

	// Fixed thresholds for the untrained mode. A household day above 50
	// kWh or below 0.5 kWh is treated as suspect absent any history.
	fixedHigh = 50.0
	fixedLow  = 0.5
)

// Detector holds the fitted state. Training and classification must not
// run concurrently on the same instance; the RWMutex allows concurrent
// reads with a single writer.
type Detector struct {
	mu sync.RWMutex

	mode Mode

	mean float64
	std  float64

	// Tukey fences, valid only in Fitted mode.
	lowerFence float64
	upperFence float64
}

// NewDetector returns a detector in the Untrained mode.
func NewDetector() *Detector {
	return &Detector{}
}

// Train recomputes the running statistics from historical daily usage and
// refits the quantile model when there is enough variance. Points with
// non-positive consumption are data artifacts and are excluded.
//
// Returns true only when the quantile model was fit. Too little data or
// too little variance is not an error: the detector keeps (or falls back
// to) the statistical mode.
func (d *Detector) Train(history []models.DailyUsage) bool {
	values := make([]float64, 0, len(history))
	for _, u := range history {
		if u.ConsumptionKWh > 0 {
			values = append(values, u.ConsumptionKWh)
		}
	}

	if len(values) < minDataPoints {
		return false
	}

	mean, std := meanStd(values)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.mean = mean
	d.std = std

	if std <= minStd {
		d.mode = StatisticalOnly
		return false
	}

	q1, q3 := quartiles(values)
	iqr := q3 - q1
	d.lowerFence = q1 - 1.5*iqr
	d.upperFence = q3 + 1.5*iqr
	d.mode = Fitted
	return true
}

// Classify reports whether a consumption value is anomalous under the
// current mode. Non-positive values are never anomalies: zero or negative
// consumption signals a data problem upstream, not an outlier.
func (d *Detector) Classify(consumption float64) bool {
	if consumption <= 0 {
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	switch d.mode {
	case Fitted:
		return consumption < d.lowerFence || consumption > d.upperFence
	case StatisticalOnly:
		if d.std > 0 {
			z := math.Abs(consumption-d.mean) / d.std
			return z > zScoreLimit
		}
		fallthrough
	default:
		return consumption > fixedHigh || consumption < fixedLow
	}
}

// Mode returns the decision rule currently in effect.
func (d *Detector) Mode() Mode {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mode
}

// Stats returns the running mean and standard deviation from the last
// training pass. Both are zero while untrained.
func (d *Detector) Stats() (mean, std float64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mean, d.std
}

func meanStd(values []float64) (mean, std float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))

	return mean, math.Sqrt(variance)
}

// quartiles returns Q1 and Q3 by linear interpolation over the sorted
// values.
func quartiles(values []float64) (q1, q3 float64) {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return quantile(sorted, 0.25), quantile(sorted, 0.75)
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
