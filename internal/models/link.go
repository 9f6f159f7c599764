package models

import "time"

// Link represents a shortened link stored in the database.
// The alias is globally unique and immutable once assigned; the Clicks
// counter only ever increases and is the source of truth for total clicks.
type Link struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// OwnerID identifies the authenticated owner of the link. The value
	// comes from the auth boundary and is trusted verbatim.
	OwnerID string `gorm:"index;size:64;not null" json:"owner_id"`

	// LongURL is the destination the alias redirects to.
	LongURL string `gorm:"not null" json:"long_url"`

	// Alias is the short token appended to the base URL. The unique index
	// is what makes concurrent check-then-insert creation safe.
	Alias string `gorm:"uniqueIndex;size:20;not null" json:"alias"`

	// Topic is an optional label used to group links for analytics.
	Topic string `gorm:"index;size:64" json:"topic,omitempty"`

	// Clicks is the monotonic total click counter, incremented
	// asynchronously after each redirect.
	Clicks int64 `gorm:"not null;default:0" json:"clicks"`

	// Active gates resolution. Links are never deleted on the hot path;
	// they are deactivated instead.
	Active bool `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
