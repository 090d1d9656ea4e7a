package latency

import (
	"math"
	"testing"

	"replaysim/pkg/types"
)

func TestSampleSubmissionLatencyNeverNegative(t *testing.T) {
	t.Parallel()

	cfg := Config{OrderLatencyMs: 1, OrderLatencyStdMs: 50}
	m := New(cfg, 1)

	for range 1000 {
		if got := m.SampleSubmissionLatency(); got < 0 {
			t.Fatalf("SampleSubmissionLatency() = %d, want >= 0", got)
		}
	}
}

func TestSampleSubmissionLatencyMeanWithinBound(t *testing.T) {
	t.Parallel()

	cfg := Config{OrderLatencyMs: 50, OrderLatencyStdMs: 10}
	m := New(cfg, 42)

	const n = 5000
	var sum float64
	for range n {
		sum += float64(m.SampleSubmissionLatency()) / float64(types.Millisecond)
	}
	mean := sum / n

	if !meanWithinBound(mean, cfg.OrderLatencyMs, cfg.OrderLatencyStdMs, n) {
		t.Errorf("empirical mean %v ms not within 3sigma/sqrt(n) of %v", mean, cfg.OrderLatencyMs)
	}
}

func TestApplySlippageDirection(t *testing.T) {
	t.Parallel()

	m := New(Config{MarketOrderSlippageBps: 1}, 1)

	buy := m.ApplySlippage(100, types.Buy)
	if buy <= 100 {
		t.Errorf("ApplySlippage(100, Buy) = %v, want > 100", buy)
	}

	sell := m.ApplySlippage(100, types.Sell)
	if sell >= 100 {
		t.Errorf("ApplySlippage(100, Sell) = %v, want < 100", sell)
	}

	wantBuy := 100 * 1.0001
	if math.Abs(buy-wantBuy) > 1e-9 {
		t.Errorf("ApplySlippage(100, Buy) = %v, want %v", buy, wantBuy)
	}
}

func TestShouldFillLimitProbabilityExtremes(t *testing.T) {
	t.Parallel()

	never := New(Config{LimitOrderFillProbability: 0}, 1)
	for range 100 {
		if never.ShouldFillLimit() {
			t.Fatal("ShouldFillLimit() = true with probability 0")
		}
	}

	always := New(Config{LimitOrderFillProbability: 1}, 1)
	for range 100 {
		if !always.ShouldFillLimit() {
			t.Fatal("ShouldFillLimit() = false with probability 1")
		}
	}
}

func TestSeededModelIsReproducible(t *testing.T) {
	t.Parallel()

	a := New(Config{OrderLatencyMs: 50, OrderLatencyStdMs: 10}, 7)
	b := New(Config{OrderLatencyMs: 50, OrderLatencyStdMs: 10}, 7)

	for range 20 {
		if a.SampleSubmissionLatency() != b.SampleSubmissionLatency() {
			t.Fatal("two Models with the same seed diverged")
		}
	}
}
