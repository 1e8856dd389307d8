package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/intellecta/intellecta/internal/config"
	"github.com/intellecta/intellecta/internal/models"
)

func testComputer() *Computer {
	cfg := config.RetrievalConfig{}
	cfg.DistanceCeiling = 0.8
	cfg.HighQualityThreshold = 0.35
	cfg.LatencyBudgetMS = 500
	cfg.ReferenceRate = 200
	return NewComputer(cfg)
}

func cand(distance float64) models.RerankedCandidate {
	return models.RerankedCandidate{
		RetrievalCandidate: models.RetrievalCandidate{Distance: distance},
	}
}

func TestScoreEmpty(t *testing.T) {
	m := testComputer().Score(nil, 0, 100*time.Millisecond)
	if m.Accuracy != 0 || m.Precision != 0 || m.Efficiency != 0 || m.Throughput != 0 {
		t.Errorf("empty set should score zeros: %+v", m)
	}
	if math.IsNaN(m.AvgDistance) || math.IsNaN(m.HighQualityRatio) {
		t.Error("empty set must not produce NaN")
	}
}

func TestScoreBasic(t *testing.T) {
	c := testComputer()
	candidates := []models.RerankedCandidate{cand(0.2), cand(0.3), cand(0.7)}

	m := c.Score(candidates, 9, 250*time.Millisecond)

	if m.ChunksAnalyzed != 9 {
		t.Errorf("ChunksAnalyzed = %d, want 9", m.ChunksAnalyzed)
	}
	if m.AvgDistance != 0.4 {
		t.Errorf("AvgDistance = %f, want 0.4", m.AvgDistance)
	}
	if m.MinDistance != 0.2 || m.MaxDistance != 0.7 {
		t.Errorf("distance bounds: min=%f max=%f", m.MinDistance, m.MaxDistance)
	}

	// avg 0.4 over ceiling 0.8 -> accuracy 50.
	if m.Accuracy != 50 {
		t.Errorf("Accuracy = %f, want 50", m.Accuracy)
	}
	// 2 of 3 below 0.35 -> precision 66.7.
	if m.Precision != 66.7 {
		t.Errorf("Precision = %f, want 66.7", m.Precision)
	}
	// Inside the 500ms budget -> 100.
	if m.Efficiency != 100 {
		t.Errorf("Efficiency = %f, want 100", m.Efficiency)
	}
	// 9 chunks in 0.25s = 36 chunks/s; 36/200 -> 18.
	if m.ChunksPerSecond != 36 {
		t.Errorf("ChunksPerSecond = %f, want 36", m.ChunksPerSecond)
	}
	if m.Throughput != 18 {
		t.Errorf("Throughput = %f, want 18", m.Throughput)
	}
}

func TestScoreClamping(t *testing.T) {
	c := testComputer()

	// Distances past the ceiling clamp accuracy at 0.
	m := c.Score([]models.RerankedCandidate{cand(1.5), cand(1.9)}, 2, time.Second)
	if m.Accuracy != 0 {
		t.Errorf("Accuracy = %f, want 0", m.Accuracy)
	}

	// Slow retrieval degrades efficiency but never below 0.
	if m.Efficiency <= 0 || m.Efficiency > 100 {
		t.Errorf("Efficiency = %f out of (0,100]", m.Efficiency)
	}

	// Very fast retrieval of many chunks saturates throughput at 100.
	m = c.Score([]models.RerankedCandidate{cand(0.1)}, 1000, 10*time.Millisecond)
	if m.Throughput != 100 {
		t.Errorf("Throughput = %f, want 100", m.Throughput)
	}

	for name, v := range map[string]float64{
		"accuracy":   m.Accuracy,
		"precision":  m.Precision,
		"efficiency": m.Efficiency,
		"throughput": m.Throughput,
	} {
		if v < 0 || v > 100 {
			t.Errorf("%s = %f out of [0,100]", name, v)
		}
	}
}

func TestScoreEfficiencyDecay(t *testing.T) {
	c := testComputer()
	candidates := []models.RerankedCandidate{cand(0.1)}

	fast := c.Score(candidates, 1, 100*time.Millisecond)
	slow := c.Score(candidates, 1, 2*time.Second)
	if fast.Efficiency != 100 {
		t.Errorf("fast Efficiency = %f, want 100", fast.Efficiency)
	}
	if slow.Efficiency >= fast.Efficiency {
		t.Errorf("slow retrieval should score lower: %f >= %f", slow.Efficiency, fast.Efficiency)
	}
	// 500ms budget over 2s elapsed -> 25.
	if slow.Efficiency != 25 {
		t.Errorf("slow Efficiency = %f, want 25", slow.Efficiency)
	}
}
