package models

import "time"

// Document is the metadata of an uploaded reference file.
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Subject     string    `json:"subject"`
	Size        int64     `json:"size"`
	Checksum    string    `json:"checksum"`
	ContentType string    `json:"content_type"`
	Text        string    `json:"-"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// DocumentHit is one full-text search match.
type DocumentHit struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Snippet string `json:"snippet"`
}
