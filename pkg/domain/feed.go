package domain

import "time"

// Feed represents a polled RSS/Atom source
type Feed struct {
	ID            int64
	Title         string
	URL           string // feed document URL, unique
	SiteURL       string
	ETag          string
	LastModified  string
	LastRefreshAt *time.Time // last refresh attempt, nil if never attempted
	CreatedAt     time.Time
}

// FeedSummary is a subscribed feed annotated with the user's unread count
type FeedSummary struct {
	Feed
	Unread int
}

// Subscription links a user to a feed
type Subscription struct {
	Username  string
	FeedID    int64
	CreatedAt time.Time
}
