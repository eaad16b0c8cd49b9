package settings

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/duel/internal/config"
	"github.com/rs/zerolog/log"
)

// Setting is one row of the game_settings table.
type Setting struct {
	Key         string         `db:"key"`
	Value       string         `db:"value"`
	Description sql.NullString `db:"description"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// List returns every stored override.
func List(ctx context.Context, db *sqlx.DB) ([]Setting, error) {
	var rows []Setting
	err := db.SelectContext(ctx, &rows, `
		SELECT key, value, description, updated_at
		FROM game_settings
		ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("list game settings: %w", err)
	}
	return rows, nil
}

// Load reads the overrides from db and applies them to g.
func Load(ctx context.Context, db *sqlx.DB, g *config.Game) error {
	rows, err := List(ctx, db)
	if err != nil {
		return err
	}
	n, err := Apply(rows, g)
	if err != nil {
		return err
	}
	log.Info().Int("applied", n).Int("rows", len(rows)).Msg("applied game setting overrides from database")
	return nil
}

// Apply copies recognised overrides onto g. Unknown keys and unparsable
// values are skipped. If the result does not validate, g is left untouched.
func Apply(rows []Setting, g *config.Game) (int, error) {
	next := *g
	applied := 0
	for _, s := range rows {
		if err := applyOne(&next, s.Key, strings.TrimSpace(s.Value)); err != nil {
			log.Warn().Str("key", s.Key).Str("value", s.Value).Err(err).Msg("game setting skipped")
			continue
		}
		applied++
	}
	if err := next.Validate(); err != nil {
		return 0, fmt.Errorf("game settings overrides: %w", err)
	}
	*g = next
	return applied, nil
}

func applyOne(g *config.Game, key, value string) error {
	switch key {
	case "max_health":
		return setFloat(&g.MaxHealth, value)
	case "round_duration_sec":
		var secs config.Seconds
		for _, part := range strings.Split(value, ",") {
			v, err := parseFloat(strings.TrimSpace(part))
			if err != nil {
				return err
			}
			secs = append(secs, v)
		}
		g.RoundDurationSec = secs
		return nil
	case "show_result_duration_sec":
		return setFloat(&g.ShowResultDurationSec, value)
	case "crit_warmup_sec":
		return setFloat(&g.CritWarmupSec, value)
	case "crit_duration_sec":
		return setFloat(&g.CritDurationSec, value)
	case "crit_settle_duration_sec":
		return setFloat(&g.CritSettleDurationSec, value)
	case "afk_damage":
		return setFloat(&g.AfkDamage, value)
	case "hit_damage":
		return setFloat(&g.HitDamage, value)
	case "crit_damage_per_tap":
		return setFloat(&g.CritDamagePerTap, value)
	case "max_afk_rounds":
		return setInt(&g.MaxAfkRounds, value)
	case "crit_trigger_streak":
		return setInt(&g.CritTriggerStreak, value)
	}
	return fmt.Errorf("unknown key")
}

func setFloat(dst *float64, value string) error {
	v, err := parseFloat(value)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// parseFloat accepts finite numbers only; strconv also parses "NaN" and "Inf".
func parseFloat(value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", value)
	}
	return v, nil
}

func setInt(dst *int, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
