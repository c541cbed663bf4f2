package models

import (
	"fmt"
	"strings"
)

// Region is a Battle.net API region.
type Region string

const (
	RegionUS Region = "us"
	RegionEU Region = "eu"
	RegionKR Region = "kr"
	RegionTW Region = "tw"
	RegionCN Region = "cn"
)

var regions = []Region{RegionUS, RegionEU, RegionKR, RegionTW, RegionCN}

// Regions returns every supported region.
func Regions() []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}

// ParseRegion accepts a region code in any case.
func ParseRegion(value string) (Region, error) {
	candidate := Region(strings.ToLower(strings.TrimSpace(value)))
	if candidate.Valid() {
		return candidate, nil
	}
	return "", fmt.Errorf("unsupported region %q", value)
}

func (r Region) Valid() bool {
	for _, known := range regions {
		if r == known {
			return true
		}
	}
	return false
}

// APIHost is the base URL of the game data and profile APIs for the region.
func (r Region) APIHost() string {
	if r == RegionCN {
		return "https://gateway.battlenet.com.cn"
	}
	return "https://" + string(r) + ".api.blizzard.com"
}

// OAuthTokenURL is the client-credentials token endpoint for the region.
func (r Region) OAuthTokenURL() string {
	if r == RegionCN {
		return "https://oauth.battlenet.com.cn/token"
	}
	return "https://oauth.battle.net/token"
}

// Namespace kinds used in the Battlenet-Namespace header.
const (
	NamespaceStatic  = "static"
	NamespaceDynamic = "dynamic"
	NamespaceProfile = "profile"
)

// Namespace returns e.g. "dynamic-us".
func (r Region) Namespace(kind string) string {
	return kind + "-" + string(r)
}
