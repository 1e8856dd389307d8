// Package metrics derives per-query retrieval quality and performance scores.
package metrics

import (
	"time"

	"github.com/intellecta/intellecta/internal/config"
	"github.com/intellecta/intellecta/internal/models"
	"github.com/intellecta/intellecta/pkg/utils"
)

// Computer turns raw retrieval observations into the four headline scores.
// All scores are percentages clamped to [0,100]; an empty candidate set
// yields zeros rather than NaN. Stateless and safe for concurrent use.
type Computer struct {
	distanceCeiling      float64
	highQualityThreshold float64
	latencyBudget        time.Duration
	referenceRate        float64
}

// NewComputer builds a Computer from retrieval calibration settings.
func NewComputer(cfg config.RetrievalConfig) *Computer {
	return &Computer{
		distanceCeiling:      cfg.DistanceCeiling,
		highQualityThreshold: cfg.HighQualityThreshold,
		latencyBudget:        time.Duration(cfg.LatencyBudgetMS) * time.Millisecond,
		referenceRate:        cfg.ReferenceRate,
	}
}

// Score computes metrics for one query turn. candidates are the final
// returned results; analyzed is the number of chunks that passed the access
// gate and were scored; elapsed is the retrieval stage duration.
func (c *Computer) Score(candidates []models.RerankedCandidate, analyzed int, elapsed time.Duration) *models.RetrievalMetrics {
	m := &models.RetrievalMetrics{ChunksAnalyzed: analyzed}
	if len(candidates) == 0 {
		return m
	}

	min := candidates[0].Distance
	max := candidates[0].Distance
	var sum float64
	highQuality := 0
	for _, cand := range candidates {
		d := cand.Distance
		sum += d
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
		if d < c.highQualityThreshold {
			highQuality++
		}
	}
	avg := sum / float64(len(candidates))
	hqRatio := float64(highQuality) / float64(len(candidates))

	m.AvgDistance = utils.Round4(avg)
	m.MinDistance = utils.Round4(min)
	m.MaxDistance = utils.Round4(max)
	m.HighQualityRatio = utils.Round4(hqRatio)

	// Accuracy degrades linearly as the average distance approaches the
	// calibrated ceiling.
	m.Accuracy = utils.Round1(100 * (1 - utils.Clamp(avg/c.distanceCeiling, 0, 1)))

	m.Precision = utils.Round1(utils.Clamp(hqRatio*100, 0, 100))

	// Efficiency is full marks inside the latency budget and decays
	// inversely beyond it.
	if elapsed <= 0 {
		m.Efficiency = 100
	} else {
		m.Efficiency = utils.Round1(100 * utils.Clamp(float64(c.latencyBudget)/float64(elapsed), 0, 1))
	}

	if elapsed > 0 {
		rate := float64(analyzed) / elapsed.Seconds()
		m.ChunksPerSecond = utils.Round1(rate)
		m.Throughput = utils.Round1(100 * utils.Clamp(rate/c.referenceRate, 0, 1))
	}

	return m
}
