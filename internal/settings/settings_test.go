package settings

import (
	"testing"
	"time"

	"github.com/playmatatu/duel/internal/config"
)

func rows(kv ...string) []Setting {
	var out []Setting
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, Setting{Key: kv[i], Value: kv[i+1]})
	}
	return out
}

func TestApplyOverrides(t *testing.T) {
	g := config.DefaultGame()
	n, err := Apply(rows(
		"max_health", "20",
		"round_duration_sec", "5, 4,3",
		"crit_trigger_streak", "3",
		"afk_damage", "2.5",
	), &g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("applied = %d, want 4", n)
	}
	if g.MaxHealth != 20 || g.CritTriggerStreak != 3 || g.AfkDamage != 2.5 {
		t.Errorf("overrides not applied: %+v", g)
	}
	if g.RoundDuration(0) != 5*time.Second || g.RoundDuration(7) != 3*time.Second {
		t.Errorf("round durations = %v", g.RoundDurationSec)
	}
}

func TestApplySkipsBadRows(t *testing.T) {
	g := config.DefaultGame()
	n, err := Apply(rows(
		"max_health", "lots",
		"no_such_key", "1",
		"hit_damage", "2",
	), &g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 || g.HitDamage != 2 || g.MaxHealth != 10 {
		t.Errorf("n=%d cfg=%+v", n, g)
	}
}

func TestApplyRejectsInvalidResult(t *testing.T) {
	g := config.DefaultGame()
	if _, err := Apply(rows("max_afk_rounds", "0"), &g); err == nil {
		t.Fatalf("expected validation error")
	}
	if g.MaxAfkRounds != 2 {
		t.Errorf("config changed despite invalid overrides: %+v", g)
	}
}

func TestApplySkipsNonFiniteValues(t *testing.T) {
	g := config.DefaultGame()
	n, err := Apply(rows(
		"max_health", "NaN",
		"round_duration_sec", "4,Inf",
		"hit_damage", "-inf",
		"crit_damage_per_tap", "+Inf",
		"afk_damage", "3",
	), &g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 || g.AfkDamage != 3 {
		t.Errorf("n=%d cfg=%+v", n, g)
	}
	if g.MaxHealth != 10 || g.HitDamage != 1 || g.CritDamagePerTap != 0.2 {
		t.Errorf("non-finite override applied: %+v", g)
	}
	if g.RoundDuration(0) != 4*time.Second || len(g.RoundDurationSec) != 1 {
		t.Errorf("round durations = %v", g.RoundDurationSec)
	}
}
