package feed

import (
	"fmt"
	"time"

	"github.com/umputun/feedkeeper/pkg/domain"
)

// Validators are cache validators used for conditional GET, opaque to callers
type Validators struct {
	ETag         string
	LastModified string
}

// Result is a normalized fetch outcome. NotModified results carry no feed data or entries.
type Result struct {
	NotModified bool
	Title       string
	SiteURL     string
	Validators  Validators
	Entries     []Entry // in document order
}

// Entry is a single parsed feed entry
type Entry struct {
	GUID      string
	Title     string
	Author    string
	URL       string
	Content   string
	Published time.Time
}

// Kind tags a fetch failure
type Kind int

// failure kinds
const (
	KindNetwork Kind = iota + 1
	KindParse
)

// String returns failure kind name
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	}
	return "unknown"
}

// FetchError is returned by Fetch for any failure. It matches domain.ErrNetwork or
// domain.ErrParse with errors.Is, depending on Kind.
type FetchError struct {
	Kind   Kind
	URL    string
	Status int // http status, 0 for transport and parse failures
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error: %s: status %d: %v", e.Kind, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.URL, e.Err)
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error { return e.Err }

// Is matches the domain sentinel for the failure kind
func (e *FetchError) Is(target error) bool {
	switch e.Kind {
	case KindNetwork:
		return target == domain.ErrNetwork
	case KindParse:
		return target == domain.ErrParse
	}
	return false
}

func networkError(feedURL string, status int, err error) *FetchError {
	return &FetchError{Kind: KindNetwork, URL: feedURL, Status: status, Err: err}
}

func parseError(feedURL string, err error) *FetchError {
	return &FetchError{Kind: KindParse, URL: feedURL, Err: err}
}
