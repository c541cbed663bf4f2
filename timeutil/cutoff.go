package timeutil

import (
	"fmt"
	"time"

	"github.com/tnicklin/keystonescan/models"
)

// WeeklyResetHour is the local hour of the weekly reset.
const WeeklyResetHour = 7

type resetSchedule struct {
	location string
	offset   int
	weekday  time.Weekday
}

// Weekly reset is Tuesday 07:00 Pacific in the Americas and Wednesday
// 07:00 Central European time in Europe. Asian regions reset Thursday.
var schedules = map[models.Region]resetSchedule{
	models.RegionUS: {location: "America/Los_Angeles", offset: -8 * 3600, weekday: time.Tuesday},
	models.RegionEU: {location: "Europe/Paris", offset: 1 * 3600, weekday: time.Wednesday},
	models.RegionKR: {location: "Asia/Seoul", offset: 9 * 3600, weekday: time.Thursday},
	models.RegionTW: {location: "Asia/Taipei", offset: 8 * 3600, weekday: time.Thursday},
	models.RegionCN: {location: "Asia/Shanghai", offset: 8 * 3600, weekday: time.Thursday},
}

func schedule(region models.Region) resetSchedule {
	if s, ok := schedules[region]; ok {
		return s
	}
	return schedules[models.RegionUS]
}

// Location returns the time zone the region's weekly reset is defined in.
func Location(region models.Region) *time.Location {
	s := schedule(region)
	loc, err := time.LoadLocation(s.location)
	if err != nil {
		return time.FixedZone(s.location, s.offset)
	}
	return loc
}

// WeeklyResetAt returns the most recent weekly reset at or before now.
func WeeklyResetAt(now time.Time, region models.Region) time.Time {
	return weeklyResetIn(now, Location(region), schedule(region).weekday)
}

func weeklyResetIn(now time.Time, loc *time.Location, weekday time.Weekday) time.Time {
	n := now.In(loc)
	diff := (int(n.Weekday()) - int(weekday) + 7) % 7
	day := n.AddDate(0, 0, -diff)
	reset := time.Date(day.Year(), day.Month(), day.Day(), WeeklyResetHour, 0, 0, 0, loc)
	if n.Before(reset) {
		reset = reset.AddDate(0, 0, -7)
	}
	return reset
}

func ParseRFC3339(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// CompletedSince reports whether an RFC3339 completion time is after cutoff.
// Unparseable values are treated as not completed since.
func CompletedSince(completedAt string, cutoff time.Time) bool {
	t, err := ParseRFC3339(completedAt)
	if err != nil {
		return false
	}
	return t.After(cutoff)
}
