// Package effects holds the tiered effect catalog and the selector that
// chooses effects for emotionally significant segments.
package effects

import "github.com/abdulachik/cinemark/internal/book"

// Tier gates which effects are eligible for a given emotional score.
type Tier int

const (
	TierMicro Tier = iota
	TierModerate
	TierDramatic
)

// String names the tier for metadata and logs.
func (t Tier) String() string {
	switch t {
	case TierMicro:
		return "micro"
	case TierModerate:
		return "moderate"
	case TierDramatic:
		return "dramatic"
	}
	return "unknown"
}

// TierFor maps an emotional score to its effect tier.
func TierFor(score float64) Tier {
	switch {
	case score > 0.8:
		return TierDramatic
	case score > 0.6:
		return TierModerate
	default:
		return TierMicro
	}
}

// Definition describes one catalog effect. Declaration order within the
// catalog is the tie-break order during selection.
type Definition struct {
	Name     string
	Kind     book.EffectKind
	Tier     Tier
	Triggers []string
	Contexts []string
	// Themes restricts the effect to matching book themes; empty means
	// general (always compatible).
	Themes []string
	// BaseIntensity is the starting intensity before trigger boosts.
	BaseIntensity float64
	// Volume applies to sound effects.
	Volume float64
}

// CompatibleWith reports whether the effect may appear in a book of the
// given theme.
func (d *Definition) CompatibleWith(theme string) bool {
	if len(d.Themes) == 0 {
		return true
	}
	for _, t := range d.Themes {
		if t == theme || t == "general" {
			return true
		}
	}
	return false
}

// Catalog is an ordered, immutable effect registry.
type Catalog struct {
	defs []Definition
}

// NewCatalog builds a catalog preserving declaration order.
func NewCatalog(defs []Definition) *Catalog {
	return &Catalog{defs: defs}
}

// Select returns the definitions of a tier and kind compatible with the
// theme, in declaration order.
func (c *Catalog) Select(tier Tier, kind book.EffectKind, theme string) []Definition {
	var out []Definition
	for _, d := range c.defs {
		if d.Tier == tier && d.Kind == kind && d.CompatibleWith(theme) {
			out = append(out, d)
		}
	}
	return out
}

// Lookup finds a definition by name.
func (c *Catalog) Lookup(name string) (Definition, bool) {
	for _, d := range c.defs {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// DefaultCatalog returns the built-in effect library.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Definition{
		// Text styles.
		{
			Name: "fiery_sharp", Kind: book.KindTextStyle, Tier: TierModerate,
			Triggers:      []string{"anger", "rage", "fury", "aggressive"},
			Contexts:      []string{"conflict", "battle", "confrontation"},
			BaseIntensity: 0.6,
		},
		{
			Name: "calm_gentle", Kind: book.KindTextStyle, Tier: TierMicro,
			Triggers:      []string{"peace", "calm", "gentle", "tender"},
			Contexts:      []string{"reflection", "healing", "reconciliation"},
			BaseIntensity: 0.4,
		},
		{
			Name: "mysterious_shadow", Kind: book.KindTextStyle, Tier: TierModerate,
			Triggers:      []string{"mystery", "secret", "hidden", "unknown"},
			Contexts:      []string{"revelation", "discovery", "magic"},
			BaseIntensity: 0.5,
		},
		{
			Name: "passionate_flame", Kind: book.KindTextStyle, Tier: TierDramatic,
			Triggers:      []string{"love", "passion", "desire", "romance"},
			Contexts:      []string{"romance", "confession", "intimate"},
			BaseIntensity: 0.7,
		},
		{
			Name: "fantasy_glow", Kind: book.KindTextStyle, Tier: TierModerate,
			Triggers:      []string{"magic", "enchanted", "dragon", "mystic"},
			Contexts:      []string{"magic", "fantasy", "enchanted"},
			Themes:        []string{"fantasy"},
			BaseIntensity: 0.5,
		},
		{
			Name: "noir_shadow", Kind: book.KindTextStyle, Tier: TierModerate,
			Triggers:      []string{"shadow", "smoke", "dark", "mystery"},
			Contexts:      []string{"crime", "investigation", "night"},
			Themes:        []string{"noir"},
			BaseIntensity: 0.5,
		},

		// Word effects.
		{
			Name: "burn", Kind: book.KindWordEffect, Tier: TierDramatic,
			Triggers:      []string{"hate", "rage", "fire", "burn"},
			Contexts:      []string{"climax", "conflict", "transformation"},
			BaseIntensity: 0.8,
		},
		{
			Name: "glow", Kind: book.KindWordEffect, Tier: TierModerate,
			Triggers:      []string{"light", "hope", "magic", "divine"},
			Contexts:      []string{"revelation", "magic", "divine"},
			BaseIntensity: 0.6,
		},
		{
			Name: "sparkle", Kind: book.KindWordEffect, Tier: TierModerate,
			Triggers:      []string{"joy", "wonder", "magic", "beautiful"},
			Contexts:      []string{"joy", "wonder", "celebration"},
			BaseIntensity: 0.5,
		},

		// Sounds.
		{
			Name: "swords_clash", Kind: book.KindSound, Tier: TierDramatic,
			Triggers:      []string{"fight", "battle", "sword", "clash"},
			Contexts:      []string{"battle", "duel", "conflict"},
			BaseIntensity: 0.8,
			Volume:        0.3,
		},
		{
			Name: "gentle_wind", Kind: book.KindSound, Tier: TierMicro,
			Triggers:      []string{"wind", "breeze", "peace", "calm"},
			Contexts:      []string{"peace", "nature", "reflection"},
			BaseIntensity: 0.4,
			Volume:        0.2,
		},
		{
			Name: "heartbeat", Kind: book.KindSound, Tier: TierDramatic,
			Triggers:      []string{"heart", "fear", "tension", "anticipation"},
			Contexts:      []string{"tension", "fear", "anticipation"},
			BaseIntensity: 0.6,
			Volume:        0.25,
		},
	})
}
