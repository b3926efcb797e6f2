package feed

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// parse converts raw document into Result. Only RSS and Atom are accepted.
func (f *Fetcher) parse(feedURL string, body []byte) (*Result, error) {
	switch gofeed.DetectFeedType(bytes.NewReader(body)) {
	case gofeed.FeedTypeRSS, gofeed.FeedTypeAtom:
	case gofeed.FeedTypeJSON:
		return nil, errors.New("json feeds are not supported")
	default:
		return nil, errors.New("document is neither rss nor atom")
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		return nil, errors.New("feed has no title")
	}

	res := &Result{
		Title:   title,
		SiteURL: strings.TrimSpace(parsed.Link),
		Entries: make([]Entry, 0, len(parsed.Items)),
	}
	if res.SiteURL == "" {
		res.SiteURL = feedURL
	}

	for i, item := range parsed.Items {
		if item == nil {
			continue
		}
		link := strings.TrimSpace(item.Link)
		guid := strings.TrimSpace(item.GUID)
		if guid == "" {
			guid = link
		}
		if guid == "" {
			return nil, fmt.Errorf("entry %d has neither guid nor link", i)
		}

		entry := Entry{
			GUID:    guid,
			Title:   strings.TrimSpace(item.Title),
			Author:  itemAuthor(item),
			URL:     link,
			Content: item.Content,
		}
		if entry.Content == "" {
			entry.Content = item.Description
		}
		entry.Content = strings.TrimSpace(f.sanitizer.Sanitize(entry.Content))

		// publish time, fallback to updated time and then to fetch time
		switch {
		case item.PublishedParsed != nil:
			entry.Published = item.PublishedParsed.UTC()
		case item.UpdatedParsed != nil:
			entry.Published = item.UpdatedParsed.UTC()
		default:
			entry.Published = f.now().UTC()
		}

		res.Entries = append(res.Entries, entry)
	}
	return res, nil
}

func itemAuthor(item *gofeed.Item) string {
	for _, a := range item.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			return strings.TrimSpace(a.Name)
		}
	}
	if item.Author != nil { //nolint:staticcheck // older feeds populate only the single author
		return strings.TrimSpace(item.Author.Name) //nolint:staticcheck // see above
	}
	return ""
}
