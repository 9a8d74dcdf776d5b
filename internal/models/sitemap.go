// internal/models/sitemap.go
package models

import (
	"encoding/xml"
	"net/url"
	"time"
)

// Namespace is the sitemaps.org 0.9 schema namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Sitemap represents the structure of an XML sitemap.
type Sitemap struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr,omitempty"`
	URLs    []URL    `xml:"url"`
}

// URL represents a single URL entry in the sitemap.
type URL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
	LastMod    string `xml:"lastmod,omitempty"`
}

// ChangeFreq is the advisory change frequency of a sitemap location.
type ChangeFreq string

const (
	ChangeFreqHourly  ChangeFreq = "hourly"
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
	ChangeFreqYearly  ChangeFreq = "yearly"
)

// Entry is one location to be written to the sitemap.
type Entry struct {
	Loc        *url.URL
	ChangeFreq ChangeFreq
	Priority   float64
	LastMod    time.Time
}
