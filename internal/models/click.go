package models

import "time"

// Click is a single recorded click on a shortened link. Rows are immutable
// once written; retention and purging are handled outside this service.
type Click struct {
	ID uint `gorm:"primaryKey"`

	// Alias of the link that was clicked.
	Alias string `gorm:"index;size:20;not null"`

	// Timestamp records when the click occurred.
	Timestamp time.Time `gorm:"index"`

	// UserAgent is the raw User-Agent header; OSName and DeviceType below
	// are derived from it when the event is processed.
	UserAgent string `gorm:"size:512"`

	// IPAddress of the client, used for best-effort geolocation.
	IPAddress string `gorm:"size:50"`

	// Geolocation fields stay at their zero values when the lookup fails
	// or no GeoIP database is configured.
	Country   string  `gorm:"size:64"`
	City      string  `gorm:"size:128"`
	Latitude  float64 `gorm:""`
	Longitude float64 `gorm:""`

	OSName     string `gorm:"size:64"`
	DeviceType string `gorm:"size:32"`

	// VisitorID is the client-stable token from the visitor cookie. It
	// distinguishes unique browsers, not verified users, and is best-effort:
	// clients without the cookie get a fresh one on every visit.
	VisitorID string `gorm:"index;size:36"`
}

// ClickEvent is the lightweight payload sent through the click channel from
// the redirect handler to the background workers. Enrichment (user-agent
// parsing, geolocation) happens on the worker side, off the redirect path.
type ClickEvent struct {
	Alias     string
	Timestamp time.Time
	UserAgent string
	IPAddress string
	VisitorID string
}
