// Package models defines the domain types of the study planner.
package models

import (
	"strings"
	"time"
)

// DateLayout is the ISO 8601 calendar date layout used on the wire and in SQLite.
const DateLayout = "2006-01-02"

// GeneralSubject owns documents uploaded without a subject.
const GeneralSubject = "General"

// Difficulty of a subject as perceived by the student.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Difficulties lists the valid values in ascending order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// ParseDifficulty accepts the canonical names case-insensitively, plus the
// Beginner/Intermediate/Advanced labels.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "beginner":
		return Easy, true
	case "medium", "intermediate":
		return Medium, true
	case "hard", "advanced":
		return Hard, true
	}
	return "", false
}

// Intensity controls per-topic session length.
type Intensity string

const (
	Light     Intensity = "Light"
	Moderate  Intensity = "Moderate"
	Intensive Intensity = "Intensive"
)

// ParseIntensity accepts the canonical names case-insensitively.
func ParseIntensity(s string) (Intensity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light":
		return Light, true
	case "moderate":
		return Moderate, true
	case "intensive":
		return Intensive, true
	}
	return "", false
}

// TimeBucket is a preferred time-of-day slot.
type TimeBucket string

const (
	Morning   TimeBucket = "Morning"
	Afternoon TimeBucket = "Afternoon"
	Evening   TimeBucket = "Evening"
	Night     TimeBucket = "Night"
)

// DateOf returns the calendar date of t as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

// DaysUntil is the whole-day difference between exam and today, ignoring
// time of day. Negative for past exams.
func DaysUntil(exam, today time.Time) int {
	return int(DateOf(exam).Sub(DateOf(today)).Hours() / 24)
}
