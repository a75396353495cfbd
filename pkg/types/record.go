// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// WikipediaBaseURL prefixes a record key to form its article URL.
const WikipediaBaseURL = "https://en.wikipedia.org/wiki/"

// RecordType identifies the kind of source a record was read from.
type RecordType string

const (
	RecordWikipedia RecordType = "wikipedia"
)

// AbstractInfo is the headline block of a Wikipedia abstracts record.
type AbstractInfo struct {
	Title    string `json:"title" yaml:"title"`
	Abstract string `json:"abstract" yaml:"abstract"`
	URL      string `json:"url" yaml:"url"`
}

// Sublink is an in-article section link.
type Sublink struct {
	Anchor string `json:"anchor" yaml:"anchor"`
	Link   string `json:"link" yaml:"link"`
}

// Category is a Wikipedia category attached to an article.
type Category struct {
	Text string `json:"text" yaml:"text"`
	Link string `json:"link" yaml:"link"`
}

// ExternalLink is a link from an article to another site.
type ExternalLink struct {
	Title string `json:"title" yaml:"title"`
	Link  string `json:"link" yaml:"link"`
}

// WikipediaRecord is the payload carried by a RECORD line of a Wikipedia
// abstracts dump.
type WikipediaRecord struct {
	AbstractInfo  AbstractInfo   `json:"abstract_info"`
	Sublinks      []Sublink      `json:"sublinks"`
	Categories    []Category     `json:"categories"`
	ExternalLinks []ExternalLink `json:"externallinks"`
}

// Article is a normalized record, addressable by Key.
type Article struct {
	// Key is the title with spaces replaced by underscores.
	Key string `json:"key" yaml:"key"`

	Title         string         `json:"title" yaml:"title"`
	Abstract      string         `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	URL           string         `json:"url,omitempty" yaml:"url,omitempty"`
	Categories    []Category     `json:"categories,omitempty" yaml:"categories,omitempty"`
	ExternalLinks []ExternalLink `json:"external_links,omitempty" yaml:"external_links,omitempty"`
	Sublinks      []Sublink      `json:"sublinks,omitempty" yaml:"sublinks,omitempty"`
}

// RecordKey turns an article title into its record key.
func RecordKey(title string) string {
	return strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
}

// Article converts the raw record into an Article. Blank link and category
// entries are dropped and text fields are trimmed.
func (r WikipediaRecord) Article() Article {
	a := Article{
		Key:      RecordKey(r.AbstractInfo.Title),
		Title:    strings.TrimSpace(r.AbstractInfo.Title),
		Abstract: strings.TrimSpace(r.AbstractInfo.Abstract),
		URL:      strings.TrimSpace(r.AbstractInfo.URL),
	}
	for _, c := range r.Categories {
		c.Text, c.Link = strings.TrimSpace(c.Text), strings.TrimSpace(c.Link)
		if c.Text == "" && c.Link == "" {
			continue
		}
		a.Categories = append(a.Categories, c)
	}
	for _, l := range r.ExternalLinks {
		l.Title, l.Link = strings.TrimSpace(l.Title), strings.TrimSpace(l.Link)
		if l.Title == "" && l.Link == "" {
			continue
		}
		a.ExternalLinks = append(a.ExternalLinks, l)
	}
	for _, s := range r.Sublinks {
		s.Anchor, s.Link = strings.TrimSpace(s.Anchor), strings.TrimSpace(s.Link)
		if s.Anchor == "" && s.Link == "" {
			continue
		}
		a.Sublinks = append(a.Sublinks, s)
	}
	return a
}

// AntiRecommendation names a record that is dissimilar to, yet
// surprisingly related to, another record.
type AntiRecommendation struct {
	Key string `json:"key" yaml:"key"`
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// AntiRecommendationGraph is one step of an anti-recommendation path: a
// record and the anti-recommendations reached from it.
type AntiRecommendationGraph struct {
	RecordKey           string               `json:"record_key" yaml:"record_key"`
	AntiRecommendations []AntiRecommendation `json:"anti_recommendations" yaml:"anti_recommendations"`
}
