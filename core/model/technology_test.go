package model

import (
	"errors"
	"math"
	"testing"
)

func TestTechnologyRoundTrip(t *testing.T) {
	cases := map[Technology]float64{
		TechnologyStandard:  0.90,
		TechnologyModernLFP: 0.93,
		TechnologyPremium:   0.95,
	}
	for tech, want := range cases {
		if got := tech.Parameters().RoundTrip(); math.Abs(got-want) > 1e-12 {
			t.Errorf("%s: expected round trip %v got %v", tech, want, got)
		}
	}
}

func TestTechnologyFallback(t *testing.T) {
	if ParseTechnology("unknown") != TechnologyModernLFP {
		t.Fatalf("unknown technology should map to modern_lfp")
	}
	got := Technology("unknown").Parameters().RoundTrip()
	want := TechnologyModernLFP.Parameters().RoundTrip()
	if got != want {
		t.Fatalf("expected %v got %v", want, got)
	}
}

func TestTopologyFallback(t *testing.T) {
	cfg := BatteryConfiguration{PowerMW: 10, DurationHours: 2, Topology: "unknown"}
	if cfg.PowerMWEff() != cfg.PowerMW {
		t.Fatalf("unknown topology should not derate, got %v", cfg.PowerMWEff())
	}
	cfg.Topology = TopologySeriesDC
	if math.Abs(cfg.PowerMWEff()-9.8) > 1e-12 {
		t.Fatalf("series_dc should derate by 2%%, got %v", cfg.PowerMWEff())
	}
	cfg.Topology = TopologyHybrid
	if math.Abs(cfg.PowerMWEff()-9.9) > 1e-12 {
		t.Fatalf("hybrid should derate by 1%%, got %v", cfg.PowerMWEff())
	}
}

func TestTechnologyNext(t *testing.T) {
	next, ok := TechnologyStandard.Next()
	if !ok || next != TechnologyModernLFP {
		t.Fatalf("expected modern_lfp after standard, got %s", next)
	}
	if _, ok := TechnologyPremium.Next(); ok {
		t.Fatalf("premium has no upgrade")
	}
}

func TestBatteryConfigurationValidate(t *testing.T) {
	bad := []BatteryConfiguration{
		{PowerMW: 0, DurationHours: 1},
		{PowerMW: 1, DurationHours: 0},
		{PowerMW: -1, DurationHours: 2},
		{PowerMW: math.NaN(), DurationHours: 2},
		{PowerMW: 1, DurationHours: math.Inf(1)},
	}
	for _, c := range bad {
		if err := c.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("%+v: expected ErrInvalidConfiguration got %v", c, err)
		}
	}
	ok := BatteryConfiguration{PowerMW: 1, DurationHours: 4}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok.CapacityMWh() != 4 {
		t.Fatalf("expected 4 MWh got %v", ok.CapacityMWh())
	}
	if math.Abs(ok.UsableCapacityMWh()-3.4) > 1e-12 {
		t.Fatalf("expected usable 3.4 MWh got %v", ok.UsableCapacityMWh())
	}
}

func TestSimulationResultCheckFinite(t *testing.T) {
	r := NewSimulationResult(StrategyCapShaving, 3, 1)
	if err := r.CheckFinite(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Grid[1] = math.NaN()
	if err := r.CheckFinite(); !errors.Is(err, ErrNumericCorruption) {
		t.Fatalf("expected ErrNumericCorruption got %v", err)
	}
}
