package domain

import "time"

// Entry represents a single article within a feed, immutable once stored
type Entry struct {
	ID        int64
	FeedID    int64
	GUID      string
	Title     string
	Author    string
	URL       string
	Content   string
	Published time.Time
	CreatedAt time.Time
}

// ReadEntry is an entry annotated with the user's read state
type ReadEntry struct {
	Entry
	Read bool
}

// EntryFilter selects entries by read state
type EntryFilter string

const (
	FilterAll    EntryFilter = "all"
	FilterRead   EntryFilter = "read"
	FilterUnread EntryFilter = "unread"
)

// ParseEntryFilter converts a string to EntryFilter, empty string means all
func ParseEntryFilter(s string) (EntryFilter, error) {
	switch EntryFilter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterRead, FilterUnread:
		return EntryFilter(s), nil
	}
	return "", ErrInvalidFilter
}
