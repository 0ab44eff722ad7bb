package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const maxStationNameRunes = 60

// Station is a serving counter in the dining hall.
type Station struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// NewStation validates name and returns a station stamped with now.
func NewStation(name string, now time.Time) (*Station, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, invalid("name", "is required")
	}
	if utf8.RuneCountInString(trimmed) > maxStationNameRunes {
		return nil, invalid("name", "must be at most %d characters", maxStationNameRunes)
	}
	return &Station{Name: trimmed, CreatedAt: now.UTC()}, nil
}
