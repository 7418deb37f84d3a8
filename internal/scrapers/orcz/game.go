package orcz

import (
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"
)

// Game is one of the Borderlands titles that has a code table on orcz.
type Game int

const (
	Borderlands Game = iota
	Borderlands2
	BorderlandsPreSequel
	Borderlands3
)

// Games lists every supported game in release order.
var Games = []Game{
	Borderlands,
	Borderlands2,
	BorderlandsPreSequel,
	Borderlands3,
}

type gameConfig struct {
	name      string
	shortName string
	pageUrl   string
	// one code is redeemable on every platform
	platformUnified bool
	dialect         Dialect
}

var gameConfigs = map[Game]gameConfig{
	Borderlands: {
		name:      "Borderlands",
		shortName: "bl",
		pageUrl:   "http://orcz.com/Borderlands:_Golden_Key",
		dialect:   DialectWritten,
	},
	Borderlands2: {
		name:      "Borderlands 2",
		shortName: "bl2",
		pageUrl:   "http://orcz.com/borderlands_2:_Golden_Key",
		dialect:   DialectWritten,
	},
	BorderlandsPreSequel: {
		name:      "Borderlands: The Pre-Sequel",
		shortName: "blps",
		pageUrl:   "http://orcz.com/Borderlands_Pre-Sequel:_Shift_Codes",
		dialect:   DialectWritten,
	},
	Borderlands3: {
		name:            "Borderlands 3",
		shortName:       "bl3",
		pageUrl:         "http://orcz.com/Borderlands_3:_Shift_Codes",
		platformUnified: true,
		dialect:         DialectNumeric,
	},
}

func (g Game) config() gameConfig {
	cfg, ok := gameConfigs[g]
	if !ok {
		panic(fmt.Sprintf("unknown game %d", int(g)))
	}
	return cfg
}

func (g Game) String() string {
	return g.config().name
}

// ShortName is the abbreviation used on the command line (bl, bl2, blps, bl3).
func (g Game) ShortName() string {
	return g.config().shortName
}

// PageUrl is the orcz page that holds the game's code table.
func (g Game) PageUrl() string {
	return g.config().pageUrl
}

// PlatformUnified reports whether a single code serves every platform.
func (g Game) PlatformUnified() bool {
	return g.config().platformUnified
}

// Dialect is the date dialect used in the game's issue date column.
func (g Game) Dialect() Dialect {
	return g.config().dialect
}

// GameFromName resolves a short name or a full name, ignoring case.
func GameFromName(name string) (Game, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, g := range Games {
		cfg := g.config()
		if normalized == cfg.shortName || normalized == strings.ToLower(cfg.name) {
			return g, nil
		}
	}

	closest := ""
	bestScore := 0.0
	for _, g := range Games {
		for _, candidate := range []string{g.ShortName(), strings.ToLower(g.String())} {
			score := matchr.JaroWinkler(normalized, candidate, false)
			if score > bestScore {
				bestScore = score
				closest = g.ShortName()
			}
		}
	}
	if bestScore >= 0.7 {
		return 0, fmt.Errorf("unknown game %q, did you mean %q?", name, closest)
	}
	return 0, fmt.Errorf("unknown game %q", name)
}
