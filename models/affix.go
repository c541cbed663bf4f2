package models

import (
	"fmt"
	"strings"
)

// Affix is one of the two weekly modifiers that keep separate best runs.
type Affix int

const (
	AffixUnknown Affix = iota
	AffixFortified
	AffixTyrannical
)

func (a Affix) String() string {
	switch a {
	case AffixFortified:
		return "fortified"
	case AffixTyrannical:
		return "tyrannical"
	default:
		return "unknown"
	}
}

// Other returns the opposite tracked affix.
func (a Affix) Other() Affix {
	switch a {
	case AffixFortified:
		return AffixTyrannical
	case AffixTyrannical:
		return AffixFortified
	default:
		return AffixUnknown
	}
}

// ParseAffix matches name case-insensitively against the two tracked affixes.
func ParseAffix(name string) (Affix, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fortified":
		return AffixFortified, nil
	case "tyrannical":
		return AffixTyrannical, nil
	default:
		return AffixUnknown, fmt.Errorf("unrecognized affix %q", name)
	}
}
