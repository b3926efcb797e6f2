package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedkeeper/pkg/domain"
	"github.com/umputun/feedkeeper/pkg/feed"
)

const (
	maxEntryIDs   = 1000 // ids accepted by a single entries request
	maxRSSEntries = 100  // latest entries rendered to rss export
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type subscribeRequest struct {
	URL string `json:"url"`
}

type entryIDsRequest struct {
	IDs []int64 `json:"ids"`
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	renderJSON(w, r, http.StatusOK, status)
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	if err := s.svc.RegisterUser(r.Context(), req.Username, req.Password); err != nil {
		renderServiceError(w, r, fmt.Errorf("register %q: %w", req.Username, err))
		return
	}
	renderJSON(w, r, http.StatusCreated, map[string]any{"username": req.Username})
}

func (s *Server) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteUser(r.Context(), authUser(r)); err != nil {
		renderServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listFeedsHandler(w http.ResponseWriter, r *http.Request) {
	subs, err := s.svc.ListSubscriptions(r.Context(), authUser(r))
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	feeds := make([]map[string]any, 0, len(subs))
	for _, sub := range subs {
		rec := feedJSON(sub.Feed)
		rec["unread"] = sub.Unread
		feeds = append(feeds, rec)
	}
	renderJSON(w, r, http.StatusOK, map[string]any{"feeds": feeds})
}

func (s *Server) subscribeHandler(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	f, err := s.svc.SubscribeAndFetch(r.Context(), authUser(r), req.URL)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusCreated, feedJSON(*f))
}

func (s *Server) unsubscribeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	if err := s.svc.Unsubscribe(r.Context(), authUser(r), id); err != nil {
		renderServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) unreadCountHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	n, err := s.svc.UnreadCount(r.Context(), authUser(r), id)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]any{"unread": n})
}

func (s *Server) listEntriesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	filter, err := domain.ParseEntryFilter(r.URL.Query().Get("filter"))
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	ids, err := s.svc.ListEntries(r.Context(), authUser(r), id, filter)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	renderJSON(w, r, http.StatusOK, map[string]any{"entries": ids})
}

func (s *Server) getEntriesHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDList(r.PathValue("ids"))
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	entries, err := s.svc.GetEntries(r.Context(), authUser(r), ids)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	res := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		res = append(res, entryJSON(e))
	}
	renderJSON(w, r, http.StatusOK, map[string]any{"entries": res})
}

// feedRSSHandler exports latest entries of a subscribed feed as rss, newest first
func (s *Server) feedRSSHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := authUser(r)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	filter, err := domain.ParseEntryFilter(r.URL.Query().Get("filter"))
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	entries, err := s.svc.LatestEntries(ctx, username, id, filter, maxRSSEntries)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	subs, err := s.svc.ListSubscriptions(ctx, username)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	var sub *domain.FeedSummary
	for i := range subs {
		if subs[i].ID == id {
			sub = &subs[i]
			break
		}
	}
	if sub == nil {
		renderServiceError(w, r, fmt.Errorf("feed %d: %w", id, domain.ErrNotSubscribed))
		return
	}

	doc, err := feed.NewGenerator(baseURL(r)).GenerateRSS(sub.Feed, r.URL.RequestURI(), entries)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(doc)); err != nil {
		lgr.Printf("[WARN] failed to write rss response: %v", err)
	}
}

func (s *Server) opmlHandler(w http.ResponseWriter, r *http.Request) {
	username := authUser(r)
	subs, err := s.svc.ListSubscriptions(r.Context(), username)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	doc, err := feed.NewGenerator(baseURL(r)).GenerateOPML(username, subs)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/x-opml; charset=utf-8")
	if _, err := w.Write([]byte(doc)); err != nil {
		lgr.Printf("[WARN] failed to write opml response: %v", err)
	}
}

func (s *Server) markReadHandler(w http.ResponseWriter, r *http.Request) {
	s.markEntries(w, r, true)
}

func (s *Server) markUnreadHandler(w http.ResponseWriter, r *http.Request) {
	s.markEntries(w, r, false)
}

func (s *Server) markEntries(w http.ResponseWriter, r *http.Request, read bool) {
	var req entryIDsRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	if len(req.IDs) > maxEntryIDs {
		renderError(w, r, fmt.Errorf("more than %d ids", maxEntryIDs), http.StatusBadRequest)
		return
	}

	mark := s.svc.MarkUnread
	if read {
		mark = s.svc.MarkRead
	}
	if err := mark(r.Context(), authUser(r), req.IDs); err != nil {
		renderServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func feedJSON(f domain.Feed) map[string]any {
	rec := map[string]any{
		"id":       f.ID,
		"title":    f.Title,
		"url":      f.URL,
		"site_url": f.SiteURL,
	}
	if f.LastRefreshAt != nil {
		rec["last_refresh_at"] = f.LastRefreshAt.UTC().Format(time.RFC3339)
	}
	return rec
}

func entryJSON(e domain.ReadEntry) map[string]any {
	return map[string]any{
		"id":        e.ID,
		"feed_id":   e.FeedID,
		"guid":      e.GUID,
		"title":     e.Title,
		"author":    e.Author,
		"url":       e.URL,
		"content":   e.Content,
		"published": e.Published.UTC().Format(time.RFC3339),
		"read":      e.Read,
	}
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, r.PathValue(name))
	}
	return id, nil
}

// parseIDList parses comma separated entry ids like "1,2,3"
func parseIDList(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	if len(parts) > maxEntryIDs {
		return nil, fmt.Errorf("more than %d ids", maxEntryIDs)
	}
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid entry id %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// errorStatus maps service errors to http status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNotSubscribed):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAlreadySubscribed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUserExists), errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidURL), errors.Is(err, domain.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrParse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := errorStatus(err)
	if code == http.StatusInternalServerError {
		lgr.Printf("[ERROR] %s %s: %v", r.Method, r.URL.Path, err)
		renderError(w, r, errors.New("internal error"), code)
		return
	}
	lgr.Printf("[DEBUG] %s %s: %v", r.Method, r.URL.Path, err)
	renderError(w, r, err, code)
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as {"error": {"code": ..., "message": ...}}
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]any{"error": map[string]any{"code": code, "message": errMsg}})
}
