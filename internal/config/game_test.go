package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseGameJSONOverridesDefaults(t *testing.T) {
	g, err := ParseGame([]byte(`{"maxHealth": 20, "roundDurationSec": [5, 4, 3], "critTriggerStreak": 3}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.MaxHealth != 20 {
		t.Errorf("MaxHealth = %v, want 20", g.MaxHealth)
	}
	if g.CritTriggerStreak != 3 {
		t.Errorf("CritTriggerStreak = %d, want 3", g.CritTriggerStreak)
	}
	// untouched keys keep their defaults
	if g.AfkDamage != 1.5 {
		t.Errorf("AfkDamage = %v, want default 1.5", g.AfkDamage)
	}
}

func TestParseGameYAML(t *testing.T) {
	doc := []byte("maxHealth: 12\nroundDurationSec: 3.5\nhitDamage: 2\n")
	g, err := ParseGame(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.MaxHealth != 12 || g.HitDamage != 2 {
		t.Errorf("got maxHealth=%v hitDamage=%v", g.MaxHealth, g.HitDamage)
	}
	if got := g.RoundDuration(0); got != 3500*time.Millisecond {
		t.Errorf("RoundDuration(0) = %v, want 3.5s", got)
	}
}

func TestParseGameLegacyKeys(t *testing.T) {
	doc := []byte(`{
	"MAX_HP": 8, "ROUND_TIME_SEC": 3.0, "SHOW_TIME_SEC": 1.0,
	"DMG_AFK": 2, "DMG_HIT": 0.5, "MAX_AFK_ROUNDS": 3,
	"CRIT_TRIGGER_N": 2, "CRIT_DMG_PER_TAP": 0.25
}`)
	g, err := ParseGame(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := DefaultGame()
	want.MaxHealth = 8
	want.RoundDurationSec = Seconds{3}
	want.ShowResultDurationSec = 1
	want.AfkDamage = 2
	want.HitDamage = 0.5
	want.MaxAfkRounds = 3
	want.CritTriggerStreak = 2
	want.CritDamagePerTap = 0.25

	if g.MaxHealth != want.MaxHealth || g.ShowResultDurationSec != want.ShowResultDurationSec ||
		g.AfkDamage != want.AfkDamage || g.HitDamage != want.HitDamage ||
		g.MaxAfkRounds != want.MaxAfkRounds || g.CritTriggerStreak != want.CritTriggerStreak ||
		g.CritDamagePerTap != want.CritDamagePerTap || g.RoundDuration(0) != 3*time.Second {
		t.Fatalf("legacy keys not applied: got %+v", g)
	}
}

func TestParseGameMalformedFallsBackToDefaults(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"not a document", `{"maxHealth": `},
		{"negative health", `{"maxHealth": -1}`},
		{"empty round list", `{"roundDurationSec": []}`},
		{"zero afk rounds", `{"maxAfkRounds": 0}`},
		{"string duration", `{"roundDurationSec": "fast"}`},
		{"nan health", "maxHealth: .nan\n"},
		{"infinite round", "roundDurationSec: .inf\n"},
		{"infinite entry in round list", "roundDurationSec: [4, .inf]\n"},
		{"negative infinite damage", "hitDamage: -.inf\n"},
		{"nan crit tap", "critDamagePerTap: .nan\n"},
		{"nan settle", "critSettleDurationSec: .NaN\n"},
		{"overflowing duration", `{"critDurationSec": 1e300}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := ParseGame([]byte(tc.doc))
			if err == nil {
				t.Fatalf("expected an error")
			}
			if g.MaxHealth != DefaultGame().MaxHealth || g.RoundDuration(0) != 4*time.Second {
				t.Errorf("expected defaults on failure, got %+v", g)
			}
		})
	}
}

func TestLoadGameMissingFileUsesDefaults(t *testing.T) {
	g, err := LoadGame(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatalf("expected read error")
	}
	if g.MaxHealth != 10 || g.CritDamagePerTap != 0.2 {
		t.Errorf("expected defaults, got %+v", g)
	}
}

func TestLoadGameFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("maxAfkRounds: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := LoadGame(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.MaxAfkRounds != 4 {
		t.Errorf("MaxAfkRounds = %d, want 4", g.MaxAfkRounds)
	}
}

func TestRoundDurationClampsToLastEntry(t *testing.T) {
	g := DefaultGame()
	g.RoundDurationSec = Seconds{5, 4, 3}
	cases := map[int]time.Duration{
		0:  5 * time.Second,
		1:  4 * time.Second,
		2:  3 * time.Second,
		3:  3 * time.Second,
		50: 3 * time.Second,
	}
	for idx, want := range cases {
		if got := g.RoundDuration(idx); got != want {
			t.Errorf("RoundDuration(%d) = %v, want %v", idx, got, want)
		}
	}
}

func TestSecondsMarshalJSON(t *testing.T) {
	single, _ := Seconds{4}.MarshalJSON()
	if string(single) != "4" {
		t.Errorf("single = %s, want 4", single)
	}
	list, _ := Seconds{4, 3}.MarshalJSON()
	if string(list) != "[4,3]" {
		t.Errorf("list = %s, want [4,3]", list)
	}
}

func TestValidatedDurationsArePositive(t *testing.T) {
	g, err := ParseGame([]byte("roundDurationSec: [86400, 0.5]\ncritDurationSec: 86400\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := g.RoundDuration(0); got != 24*time.Hour {
		t.Errorf("RoundDuration(0) = %v, want 24h", got)
	}
	if got := g.CritDuration(); got <= 0 {
		t.Errorf("CritDuration() = %v, want positive", got)
	}
}
