package models

import (
	"hash/fnv"
	"time"
)

// Topic is one entry of a subject's ordered topic list.
type Topic struct {
	Name     string `json:"name"`
	Progress int    `json:"progress"`
}

// Complete reports whether the topic is fully studied.
func (t Topic) Complete() bool {
	return t.Progress >= 100
}

// Subject is a course with an upcoming exam.
type Subject struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	ExamDate   time.Time  `json:"exam_date"`
	Difficulty Difficulty `json:"difficulty"`
	Color      string     `json:"color"`
	Topics     []Topic    `json:"topics"`
	CreatedAt  time.Time  `json:"created_at"`
}

// DaysUntil returns the days remaining before the exam, relative to today.
func (s Subject) DaysUntil(today time.Time) int {
	return DaysUntil(s.ExamDate, today)
}

// TopicIndex returns the position of the named topic or -1.
func (s Subject) TopicIndex(name string) int {
	for i, t := range s.Topics {
		if t.Name == name {
			return i
		}
	}
	return -1
}

var palette = []string{"#667eea", "#764ba2", "#f093fb", "#f5576c", "#4facfe", "#00f2fe"}

// ColorFor picks a stable palette color for a subject name.
func ColorFor(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return palette[h.Sum32()%uint32(len(palette))]
}
