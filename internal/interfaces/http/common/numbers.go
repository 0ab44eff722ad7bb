package common

import (
	"net/url"
	"strconv"
	"strings"
)

// ParsePositiveInt parses positive integers with fallback.
func ParsePositiveInt(value string, fallback int) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, false
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback, false
	}
	return parsed, true
}

// ParsePaging reads page and limit, clamping limit to MaxPageLimit.
func ParsePaging(query url.Values) (page, limit int) {
	page, _ = ParsePositiveInt(query.Get("page"), 1)
	limit, _ = ParsePositiveInt(query.Get("limit"), DefaultPageLimit)
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

// ParseBool treats "1", "true" and "yes" (any case) as true.
func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
