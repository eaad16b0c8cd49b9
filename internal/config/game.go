package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Seconds is a duration setting that is either a single number or an ordered
// list of per-round values.
type Seconds []float64

func (s *Seconds) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := node.Decode(&v); err != nil {
			return err
		}
		*s = Seconds{v}
	case yaml.SequenceNode:
		var vs []float64
		if err := node.Decode(&vs); err != nil {
			return err
		}
		if len(vs) == 0 {
			return errors.New("empty duration list")
		}
		*s = vs
	default:
		return fmt.Errorf("duration must be a number or a list, got yaml kind %d", node.Kind)
	}
	return nil
}

func (s *Seconds) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*s = Seconds{v}
		return nil
	}
	var vs []float64
	if err := json.Unmarshal(data, &vs); err != nil {
		return fmt.Errorf("duration must be a number or a list: %w", err)
	}
	if len(vs) == 0 {
		return errors.New("empty duration list")
	}
	*s = vs
	return nil
}

func (s Seconds) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]float64(s))
}

// At returns the entry for index i, clamped to the last entry.
func (s Seconds) At(i int) float64 {
	if len(s) == 0 {
		return 0
	}
	if i < 0 {
		i = 0
	}
	if i >= len(s) {
		i = len(s) - 1
	}
	return s[i]
}

// Game holds the tunables of a duel. It is loaded once at startup and shared
// read-only afterwards.
type Game struct {
	MaxHealth             float64 `yaml:"maxHealth" json:"maxHealth"`
	RoundDurationSec      Seconds `yaml:"roundDurationSec" json:"roundDurationSec"`
	ShowResultDurationSec float64 `yaml:"showResultDurationSec" json:"showResultDurationSec"`
	CritWarmupSec         float64 `yaml:"critWarmupSec" json:"critWarmupSec"`
	CritDurationSec       float64 `yaml:"critDurationSec" json:"critDurationSec"`
	CritSettleDurationSec float64 `yaml:"critSettleDurationSec" json:"critSettleDurationSec"`
	AfkDamage             float64 `yaml:"afkDamage" json:"afkDamage"`
	HitDamage             float64 `yaml:"hitDamage" json:"hitDamage"`
	MaxAfkRounds          int     `yaml:"maxAfkRounds" json:"maxAfkRounds"`
	CritTriggerStreak     int     `yaml:"critTriggerStreak" json:"critTriggerStreak"`
	CritDamagePerTap      float64 `yaml:"critDamagePerTap" json:"critDamagePerTap"`
}

// legacyGame accepts the upper-case keys used by older config.json files.
type legacyGame struct {
	MaxHP         *float64 `yaml:"MAX_HP" json:"MAX_HP"`
	RoundTimeSec  *Seconds `yaml:"ROUND_TIME_SEC" json:"ROUND_TIME_SEC"`
	ShowTimeSec   *float64 `yaml:"SHOW_TIME_SEC" json:"SHOW_TIME_SEC"`
	CritWarmupSec *float64 `yaml:"CRIT_WARMUP_SEC" json:"CRIT_WARMUP_SEC"`
	CritTimeSec   *float64 `yaml:"CRIT_TIME_SEC" json:"CRIT_TIME_SEC"`
	CritSettleSec *float64 `yaml:"CRIT_SETTLE_SEC" json:"CRIT_SETTLE_SEC"`
	DmgAfk        *float64 `yaml:"DMG_AFK" json:"DMG_AFK"`
	DmgHit        *float64 `yaml:"DMG_HIT" json:"DMG_HIT"`
	MaxAfkRounds  *int     `yaml:"MAX_AFK_ROUNDS" json:"MAX_AFK_ROUNDS"`
	CritTriggerN  *int     `yaml:"CRIT_TRIGGER_N" json:"CRIT_TRIGGER_N"`
	CritDmgPerTap *float64 `yaml:"CRIT_DMG_PER_TAP" json:"CRIT_DMG_PER_TAP"`
}

func DefaultGame() Game {
	return Game{
		MaxHealth:             10,
		RoundDurationSec:      Seconds{4},
		ShowResultDurationSec: 2,
		CritWarmupSec:         1,
		CritDurationSec:       4,
		CritSettleDurationSec: 2,
		AfkDamage:             1.5,
		HitDamage:             1,
		MaxAfkRounds:          2,
		CritTriggerStreak:     1,
		CritDamagePerTap:      0.2,
	}
}

// LoadGame reads the game config file at path. On any failure it returns the
// defaults together with the error so the caller can log the fallback.
func LoadGame(path string) (Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultGame(), fmt.Errorf("read game config: %w", err)
	}
	g, err := ParseGame(data)
	if err != nil {
		return DefaultGame(), err
	}
	return g, nil
}

// ParseGame decodes a JSON or YAML document on top of the defaults. Keys that
// are missing keep their default value.
func ParseGame(data []byte) (Game, error) {
	g := DefaultGame()
	if err := decode(data, &g); err != nil {
		return DefaultGame(), fmt.Errorf("parse game config: %w", err)
	}

	var legacy legacyGame
	if err := decode(data, &legacy); err != nil {
		return DefaultGame(), fmt.Errorf("parse game config: %w", err)
	}
	legacy.applyTo(&g)

	if err := g.Validate(); err != nil {
		return DefaultGame(), err
	}
	return g, nil
}

// decode picks encoding/json for JSON documents (libyaml rejects some valid
// JSON, e.g. tab indentation) and yaml.v3 for everything else.
func decode(data []byte, v any) error {
	if json.Valid(data) {
		return json.Unmarshal(data, v)
	}
	return yaml.Unmarshal(data, v)
}

func (l legacyGame) applyTo(g *Game) {
	setF := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setF(&g.MaxHealth, l.MaxHP)
	if l.RoundTimeSec != nil {
		g.RoundDurationSec = *l.RoundTimeSec
	}
	setF(&g.ShowResultDurationSec, l.ShowTimeSec)
	setF(&g.CritWarmupSec, l.CritWarmupSec)
	setF(&g.CritDurationSec, l.CritTimeSec)
	setF(&g.CritSettleDurationSec, l.CritSettleSec)
	setF(&g.AfkDamage, l.DmgAfk)
	setF(&g.HitDamage, l.DmgHit)
	if l.MaxAfkRounds != nil {
		g.MaxAfkRounds = *l.MaxAfkRounds
	}
	if l.CritTriggerN != nil {
		g.CritTriggerStreak = *l.CritTriggerN
	}
	setF(&g.CritDamagePerTap, l.CritDmgPerTap)
}

// maxPhaseSec bounds every phase duration so it converts to a time.Duration
// without overflow.
const maxPhaseSec = 24 * 60 * 60

// Validate rejects configurations the state machine cannot run with.
func (g Game) Validate() error {
	if !finite(g.MaxHealth) || g.MaxHealth <= 0 {
		return fmt.Errorf("maxHealth must be a positive number, got %v", g.MaxHealth)
	}
	if len(g.RoundDurationSec) == 0 {
		return errors.New("roundDurationSec is empty")
	}
	for i, v := range g.RoundDurationSec {
		if !finite(v) || v < 0 || v > maxPhaseSec {
			return fmt.Errorf("roundDurationSec[%d] must be between 0 and %d, got %v", i, maxPhaseSec, v)
		}
	}
	for name, v := range map[string]float64{
		"showResultDurationSec": g.ShowResultDurationSec,
		"critWarmupSec":         g.CritWarmupSec,
		"critDurationSec":       g.CritDurationSec,
		"critSettleDurationSec": g.CritSettleDurationSec,
	} {
		if !finite(v) || v < 0 || v > maxPhaseSec {
			return fmt.Errorf("%s must be between 0 and %d, got %v", name, maxPhaseSec, v)
		}
	}
	for name, v := range map[string]float64{
		"afkDamage":        g.AfkDamage,
		"hitDamage":        g.HitDamage,
		"critDamagePerTap": g.CritDamagePerTap,
	} {
		if !finite(v) || v < 0 {
			return fmt.Errorf("%s must be a non-negative number, got %v", name, v)
		}
	}
	if g.MaxAfkRounds < 1 {
		return fmt.Errorf("maxAfkRounds must be at least 1, got %d", g.MaxAfkRounds)
	}
	if g.CritTriggerStreak < 1 {
		return fmt.Errorf("critTriggerStreak must be at least 1, got %d", g.CritTriggerStreak)
	}
	return nil
}

func (g Game) RoundDuration(roundIndex int) time.Duration {
	return seconds(g.RoundDurationSec.At(roundIndex))
}

func (g Game) ShowResultDuration() time.Duration { return seconds(g.ShowResultDurationSec) }
func (g Game) CritWarmup() time.Duration         { return seconds(g.CritWarmupSec) }
func (g Game) CritDuration() time.Duration       { return seconds(g.CritDurationSec) }
func (g Game) CritSettleDuration() time.Duration { return seconds(g.CritSettleDurationSec) }

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
