package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/umputun/feedkeeper/pkg/domain"
)

// Generator renders a user's view of stored feeds as RSS and OPML documents
type Generator struct {
	baseURL string
	now     func() time.Time
}

// RSS is the root of RSS 2.0 document
type RSS struct {
	XMLName xml.Name    `xml:"rss"`
	Version string      `xml:"version,attr"`
	Atom    string      `xml:"xmlns:atom,attr"`
	Channel *RSSChannel `xml:"channel"`
}

// RSSChannel is the rss channel element
type RSSChannel struct {
	Title         string     `xml:"title"`
	Link          string     `xml:"link"`
	Description   string     `xml:"description"`
	AtomLink      *AtomLink  `xml:"atom:link"`
	LastBuildDate string     `xml:"lastBuildDate"`
	Items         []*RSSItem `xml:"item"`
}

// AtomLink is the self reference of the channel
type AtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

// RSSItem is a single rss item
type RSSItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link,omitempty"`
	GUID        RSSGUID `xml:"guid"`
	Description string  `xml:"description"`
	Author      string  `xml:"author,omitempty"`
	PubDate     string  `xml:"pubDate"`
}

// RSSGUID keeps the source guid, which is not necessarily a link
type RSSGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

// NewGenerator creates a new feed generator, baseURL is used for self links
func NewGenerator(baseURL string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// GenerateRSS creates an RSS 2.0 document of entries of a single stored feed.
// selfPath is the request path of the document, read state goes to the item title.
func (g *Generator) GenerateRSS(f domain.Feed, selfPath string, entries []domain.ReadEntry) (string, error) {
	items := make([]*RSSItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, g.convertToRSSItem(e))
	}

	link := f.SiteURL
	if link == "" {
		link = f.URL
	}
	doc := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         f.Title,
			Link:          link,
			Description:   fmt.Sprintf("Entries of %s", f.URL),
			AtomLink:      &AtomLink{Href: g.baseURL + selfPath, Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: g.now().UTC().Format(time.RFC1123Z),
			Items:         items,
		},
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}
	return xml.Header + string(output), nil
}

func (g *Generator) convertToRSSItem(e domain.ReadEntry) *RSSItem {
	title := e.Title
	if e.Read {
		title = "[read] " + title
	}
	return &RSSItem{
		Title:       title,
		Link:        e.URL,
		GUID:        RSSGUID{Value: e.GUID, IsPermaLink: false},
		Description: e.Content,
		Author:      e.Author,
		PubDate:     e.Published.UTC().Format(time.RFC1123Z),
	}
}

// GenerateOPML creates an OPML file with the user's feed subscriptions
func (g *Generator) GenerateOPML(username string, feeds []domain.FeedSummary) (string, error) {
	type outline struct {
		XMLName xml.Name `xml:"outline"`
		Text    string   `xml:"text,attr"`
		Title   string   `xml:"title,attr"`
		Type    string   `xml:"type,attr"`
		XMLUrl  string   `xml:"xmlUrl,attr"`
		HTMLUrl string   `xml:"htmlUrl,attr,omitempty"`
	}

	type body struct {
		XMLName  xml.Name  `xml:"body"`
		Outlines []outline `xml:"outline"`
	}

	type head struct {
		XMLName     xml.Name `xml:"head"`
		Title       string   `xml:"title"`
		DateCreated string   `xml:"dateCreated"`
	}

	type opml struct {
		XMLName xml.Name `xml:"opml"`
		Version string   `xml:"version,attr"`
		Head    head     `xml:"head"`
		Body    body     `xml:"body"`
	}

	outlines := make([]outline, 0, len(feeds))
	for _, f := range feeds {
		outlines = append(outlines, outline{
			Text:    f.Title,
			Title:   f.Title,
			Type:    "rss",
			XMLUrl:  f.URL,
			HTMLUrl: f.SiteURL,
		})
	}

	doc := opml{
		Version: "2.0",
		Head: head{
			Title:       fmt.Sprintf("Feedkeeper subscriptions of %s", username),
			DateCreated: g.now().UTC().Format(time.RFC1123Z),
		},
		Body: body{Outlines: outlines},
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal OPML: %w", err)
	}
	return xml.Header + string(output), nil
}
