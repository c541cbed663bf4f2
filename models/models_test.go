package models

import "testing"

func TestParseRegion(t *testing.T) {
	tests := []struct {
		input   string
		want    Region
		wantErr bool
	}{
		{input: "us", want: RegionUS},
		{input: "EU", want: RegionEU},
		{input: " kr ", want: RegionKR},
		{input: "tw", want: RegionTW},
		{input: "cn", want: RegionCN},
		{input: "sea", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRegion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRegion(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRegion(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRegionHosts(t *testing.T) {
	if got := RegionEU.APIHost(); got != "https://eu.api.blizzard.com" {
		t.Errorf("APIHost = %q", got)
	}
	if got := RegionCN.APIHost(); got != "https://gateway.battlenet.com.cn" {
		t.Errorf("CN APIHost = %q", got)
	}
	if got := RegionUS.Namespace(NamespaceProfile); got != "profile-us" {
		t.Errorf("Namespace = %q", got)
	}
	if len(Regions()) != 5 {
		t.Errorf("expected 5 regions, got %d", len(Regions()))
	}
}

func TestParseLocale(t *testing.T) {
	tests := []struct {
		input   string
		want    Locale
		wantErr bool
	}{
		{input: "en_US", want: LocaleEnUS},
		{input: "de-de", want: LocaleDeDE},
		{input: "ZH_TW", want: LocaleZhTW},
		{input: "xx_XX", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLocale(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLocale(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLocale(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseAffix(t *testing.T) {
	if a, err := ParseAffix("Fortified"); err != nil || a != AffixFortified {
		t.Fatalf("expected fortified, got %v %v", a, err)
	}
	if a, err := ParseAffix("TYRANNICAL"); err != nil || a != AffixTyrannical {
		t.Fatalf("expected tyrannical, got %v %v", a, err)
	}
	if _, err := ParseAffix("Bursting"); err == nil {
		t.Fatal("expected error for unrecognized affix")
	}
	if AffixFortified.Other() != AffixTyrannical || AffixTyrannical.Other() != AffixFortified {
		t.Fatal("Other() should swap tracked affixes")
	}
}

func TestCharacterKeyAndSlug(t *testing.T) {
	c := Character{Player: "Bob", Name: "Arthas", Realm: "Kel'Thuzad", Region: "US"}
	if got := c.Key(); got != "us|kel'thuzad|arthas" {
		t.Errorf("Key() = %q", got)
	}
	if got := c.RealmSlug(); got != "kelthuzad" {
		t.Errorf("RealmSlug() = %q", got)
	}
	c.Realm = "Area 52"
	if got := c.RealmSlug(); got != "area-52" {
		t.Errorf("RealmSlug() = %q", got)
	}
}
