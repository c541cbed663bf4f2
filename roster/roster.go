// Package roster loads the ordered list of characters a scan visits.
package roster

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tnicklin/keystonescan/keystone"
	"github.com/tnicklin/keystonescan/models"
)

// FileName is the legacy roster file looked up in the input directory.
const FileName = "toons.json"

// LoadFile reads a toons.json roster. Characters keep file order.
func LoadFile(path string, region models.Region) ([]models.Character, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open roster: %v", keystone.ErrConfig, err)
	}
	defer f.Close()
	return Parse(f, region)
}

// Parse decodes {"player": {"realm": ["name", ...]}}. encoding/json maps do
// not keep key order, so the object is walked token by token.
func Parse(r io.Reader, region models.Region) ([]models.Character, error) {
	dec := json.NewDecoder(r)
	var out []models.Character

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	for dec.More() {
		player, err := stringToken(dec)
		if err != nil {
			return nil, err
		}
		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		for dec.More() {
			realm, err := stringToken(dec)
			if err != nil {
				return nil, err
			}
			var names []string
			if err := dec.Decode(&names); err != nil {
				return nil, fmt.Errorf("%w: roster %s/%s: %v", keystone.ErrConfig, player, realm, err)
			}
			for _, name := range names {
				out = append(out, models.Character{
					Player: player,
					Name:   name,
					Realm:  realm,
					Region: string(region),
				})
			}
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return Normalize(out, region)
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: roster: %v", keystone.ErrConfig, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: roster: expected %q, got %v", keystone.ErrConfig, want, tok)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: roster: %v", keystone.ErrConfig, err)
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: roster: expected key, got %v", keystone.ErrConfig, tok)
	}
	return s, nil
}

// Normalize trims fields, fills a missing region and drops repeated
// characters, keeping the first occurrence. An empty roster or a character
// missing player, realm or name is a configuration error.
func Normalize(chars []models.Character, region models.Region) ([]models.Character, error) {
	if len(chars) == 0 {
		return nil, fmt.Errorf("%w: roster is empty", keystone.ErrConfig)
	}

	seen := make(map[string]struct{}, len(chars))
	out := make([]models.Character, 0, len(chars))
	var errs []error
	for i, c := range chars {
		c.Player = strings.TrimSpace(c.Player)
		c.Name = strings.TrimSpace(c.Name)
		c.Realm = strings.TrimSpace(c.Realm)
		c.Region = strings.ToLower(strings.TrimSpace(c.Region))
		if c.Region == "" {
			c.Region = string(region)
		}
		if c.Player == "" || c.Name == "" || c.Realm == "" {
			errs = append(errs, fmt.Errorf("entry %d: player, realm and name are required", i))
			continue
		}
		if !models.Region(c.Region).Valid() {
			errs = append(errs, fmt.Errorf("entry %d: unknown region %q", i, c.Region))
			continue
		}
		if _, dup := seen[c.Key()]; dup {
			continue
		}
		seen[c.Key()] = struct{}{}
		out = append(out, c)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", keystone.ErrConfig, errors.Join(errs...))
	}
	return out, nil
}
