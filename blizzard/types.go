package blizzard

import (
	"context"
	"time"

	"github.com/tnicklin/keystonescan/models"
)

// API is the subset of the Blizzard game data and profile APIs the scan uses.
type API interface {
	DungeonIndex(ctx context.Context) ([]models.Dungeon, error)
	Dungeon(ctx context.Context, id int) (models.DungeonDetail, error)
	JournalInstanceTile(ctx context.Context, journalID int) (*string, error)
	CurrentSeason(ctx context.Context) (int, error)
	KeystoneProfile(ctx context.Context, character models.Character, season int) ([]models.Run, error)
}

// Token is an OAuth client-credentials access token.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
	IssuedAt    time.Time
}

// Valid reports whether the token is still usable at now.
func (t Token) Valid(now time.Time) bool {
	if t.AccessToken == "" {
		return false
	}
	return t.IssuedAt.Add(time.Duration(t.ExpiresIn) * time.Second).After(now)
}

// TokenCache persists tokens between runs, keyed by client id.
type TokenCache interface {
	LoadToken(ctx context.Context, clientID string) (Token, bool, error)
	SaveToken(ctx context.Context, clientID string, token Token) error
}
