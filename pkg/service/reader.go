// Package service composes storage, ingestion and read-state operations into the API used by
// request handlers.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	log "github.com/go-pkgz/lgr"
	"golang.org/x/crypto/bcrypt"

	"github.com/umputun/feedkeeper/pkg/domain"
)

// UserStore persists user accounts
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	Get(ctx context.Context, username string) (*domain.User, error)
	Delete(ctx context.Context, username string) error
}

// FeedCreator returns a stored feed for url, fetching it first if unknown
type FeedCreator interface {
	Create(ctx context.Context, feedURL string) (*domain.Feed, error)
}

// ReadState is the subscription and read-state store
type ReadState interface {
	Subscribe(ctx context.Context, username string, feedID int64) error
	Unsubscribe(ctx context.Context, username string, feedID int64) error
	ListSubscriptions(ctx context.Context, username string) ([]domain.FeedSummary, error)
	UnreadCount(ctx context.Context, username string, feedID int64) (int, error)
	ListEntries(ctx context.Context, username string, feedID int64, filter domain.EntryFilter) ([]int64, error)
	LatestEntries(ctx context.Context, username string, feedID int64, filter domain.EntryFilter, limit int) ([]domain.ReadEntry, error)
	GetEntries(ctx context.Context, username string, ids []int64) ([]domain.ReadEntry, error)
	MarkRead(ctx context.Context, username string, ids []int64) error
	MarkUnread(ctx context.Context, username string, ids []int64) error
}

// Reader is the request-facing feed reader service
type Reader struct {
	users    UserStore
	feeds    FeedCreator
	state    ReadState
	hashCost int
}

// maxUsernameLen limits account names
const maxUsernameLen = 64

// NewReader makes reader service
func NewReader(users UserStore, feeds FeedCreator, state ReadState) *Reader {
	return &Reader{users: users, feeds: feeds, state: state, hashCost: bcrypt.DefaultCost}
}

// RegisterUser creates an account with a bcrypt hashed password
func (r *Reader) RegisterUser(ctx context.Context, username, password string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("empty password: %w", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", domain.ErrInvalidInput)
	}
	if err := r.users.Create(ctx, &domain.User{Username: username, PasswordHash: string(hash)}); err != nil {
		return err
	}
	log.Printf("[INFO] registered user %s", username)
	return nil
}

// Authenticate checks user credentials. Unknown user and wrong password both give false.
func (r *Reader) Authenticate(ctx context.Context, username, password string) (bool, error) {
	user, err := r.users.Get(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("authenticate: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return false, nil
	}
	return true, nil
}

// DeleteUser removes the account with its subscriptions and read state
func (r *Reader) DeleteUser(ctx context.Context, username string) error {
	if err := r.users.Delete(ctx, username); err != nil {
		return err
	}
	log.Printf("[INFO] deleted user %s", username)
	return nil
}

// SubscribeAndFetch subscribes user to the feed at rawURL. An unknown URL is fetched and stored
// first; fetch failures are returned and leave nothing behind.
func (r *Reader) SubscribeAndFetch(ctx context.Context, username, rawURL string) (*domain.Feed, error) {
	feedURL, err := normalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	if _, err := r.users.Get(ctx, username); err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	f, err := r.feeds.Create(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("get feed %s: %w", feedURL, err)
	}
	if err := r.state.Subscribe(ctx, username, f.ID); err != nil {
		return nil, err
	}
	log.Printf("[INFO] user %s subscribed to %q (%s)", username, f.Title, f.URL)
	return f, nil
}

// Unsubscribe removes the user's subscription to a feed
func (r *Reader) Unsubscribe(ctx context.Context, username string, feedID int64) error {
	return r.state.Unsubscribe(ctx, username, feedID)
}

// ListSubscriptions returns the user's feeds with unread counts
func (r *Reader) ListSubscriptions(ctx context.Context, username string) ([]domain.FeedSummary, error) {
	return r.state.ListSubscriptions(ctx, username)
}

// UnreadCount returns unread entries count of a subscribed feed
func (r *Reader) UnreadCount(ctx context.Context, username string, feedID int64) (int, error) {
	return r.state.UnreadCount(ctx, username, feedID)
}

// ListEntries returns entry ids of a subscribed feed filtered by read state
func (r *Reader) ListEntries(ctx context.Context, username string, feedID int64, filter domain.EntryFilter) ([]int64, error) {
	return r.state.ListEntries(ctx, username, feedID, filter)
}

// LatestEntries returns up to limit entries of a subscribed feed, newest published first
func (r *Reader) LatestEntries(ctx context.Context, username string, feedID int64, filter domain.EntryFilter,
	limit int) ([]domain.ReadEntry, error) {
	return r.state.LatestEntries(ctx, username, feedID, filter, limit)
}

// GetEntries returns entries with read flags
func (r *Reader) GetEntries(ctx context.Context, username string, ids []int64) ([]domain.ReadEntry, error) {
	return r.state.GetEntries(ctx, username, ids)
}

// MarkRead marks entries read
func (r *Reader) MarkRead(ctx context.Context, username string, ids []int64) error {
	return r.state.MarkRead(ctx, username, ids)
}

// MarkUnread marks entries unread
func (r *Reader) MarkUnread(ctx context.Context, username string, ids []int64) error {
	return r.state.MarkUnread(ctx, username, ids)
}

func validateUsername(username string) error {
	switch {
	case username == "":
		return fmt.Errorf("empty username: %w", domain.ErrInvalidInput)
	case len(username) > maxUsernameLen:
		return fmt.Errorf("username longer than %d: %w", maxUsernameLen, domain.ErrInvalidInput)
	case strings.ContainsAny(username, ": \t\r\n"):
		return fmt.Errorf("username with whitespace or colon: %w", domain.ErrInvalidInput)
	}
	return nil
}

// normalizeURL accepts absolute http(s) urls only
func normalizeURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", rawURL, domain.ErrInvalidURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("scheme of %q: %w", rawURL, domain.ErrInvalidURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("host of %q: %w", rawURL, domain.ErrInvalidURL)
	}
	return rawURL, nil
}
