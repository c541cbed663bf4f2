package models

import (
	"fmt"
	"strings"
)

// Locale is a Battle.net API response locale.
type Locale string

const (
	LocaleEnUS Locale = "en_US"
	LocaleEsMX Locale = "es_MX"
	LocalePtBR Locale = "pt_BR"
	LocaleDeDE Locale = "de_DE"
	LocaleEnGB Locale = "en_GB"
	LocaleEsES Locale = "es_ES"
	LocaleFrFR Locale = "fr_FR"
	LocaleItIT Locale = "it_IT"
	LocaleRuRU Locale = "ru_RU"
	LocaleKoKR Locale = "ko_KR"
	LocaleZhTW Locale = "zh_TW"
	LocaleZhCN Locale = "zh_CN"
)

var locales = []Locale{
	LocaleEnUS, LocaleEsMX, LocalePtBR, LocaleDeDE, LocaleEnGB, LocaleEsES,
	LocaleFrFR, LocaleItIT, LocaleRuRU, LocaleKoKR, LocaleZhTW, LocaleZhCN,
}

// ParseLocale accepts "en_US", "en-us" and similar spellings.
func ParseLocale(value string) (Locale, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(value), "-", "_")
	for _, known := range locales {
		if strings.EqualFold(normalized, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unsupported locale %q", value)
}

func (l Locale) Valid() bool {
	for _, known := range locales {
		if l == known {
			return true
		}
	}
	return false
}
