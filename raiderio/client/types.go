package client

import (
	"context"

	"github.com/tnicklin/keystonescan/models"
)

// ProfileResult holds the result of a RaiderIO profile fetch.
type ProfileResult struct {
	BestRuns      []models.Run
	AlternateRuns []models.Run
	WeeklyRuns    []models.WeeklyRun
	Seasons       []models.SeasonScore
}

// Client defines the interface for fetching data from RaiderIO.
type Client interface {
	FetchProfile(context.Context, models.Character) (ProfileResult, error)
}
