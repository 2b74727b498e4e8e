package models

import (
	"fmt"
	"strings"
)

// Weekday is a day of the week a user prefers to train on.
type Weekday string

const (
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
	Saturday  Weekday = "sat"
	Sunday    Weekday = "sun"
)

// TimeOfDay is a coarse bucket within a day.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
)

var validWeekdays = map[Weekday]bool{
	Monday: true, Tuesday: true, Wednesday: true, Thursday: true,
	Friday: true, Saturday: true, Sunday: true,
}

var validTimesOfDay = map[TimeOfDay]bool{
	Morning: true, Afternoon: true, Evening: true,
}

// ParseWeekday validates and normalizes a day token.
func ParseWeekday(s string) (Weekday, error) {
	d := Weekday(strings.ToLower(strings.TrimSpace(s)))
	if !validWeekdays[d] {
		return "", fmt.Errorf("unknown weekday %q", s)
	}
	return d, nil
}

// ParseTimeOfDay validates and normalizes a time-of-day token.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t := TimeOfDay(strings.ToLower(strings.TrimSpace(s)))
	if !validTimesOfDay[t] {
		return "", fmt.Errorf("unknown time of day %q", s)
	}
	return t, nil
}

// ParseWeekdays parses a list of day tokens, skipping empty ones.
func ParseWeekdays(tokens []string) ([]Weekday, error) {
	var out []Weekday
	for _, tok := range tokens {
		if strings.TrimSpace(tok) == "" {
			continue
		}
		d, err := ParseWeekday(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// ParseTimesOfDay parses a list of time-of-day tokens, skipping empty ones.
func ParseTimesOfDay(tokens []string) ([]TimeOfDay, error) {
	var out []TimeOfDay
	for _, tok := range tokens {
		if strings.TrimSpace(tok) == "" {
			continue
		}
		t, err := ParseTimeOfDay(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// WeekdaysOverlap reports whether the two day sets share at least one day.
func WeekdaysOverlap(a, b []Weekday) bool {
	set := make(map[Weekday]bool, len(a))
	for _, d := range a {
		set[d] = true
	}
	for _, d := range b {
		if set[d] {
			return true
		}
	}
	return false
}

// TimesOverlap reports whether the two time-of-day sets share a bucket.
func TimesOverlap(a, b []TimeOfDay) bool {
	set := make(map[TimeOfDay]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	for _, t := range b {
		if set[t] {
			return true
		}
	}
	return false
}
