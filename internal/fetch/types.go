package fetch

import (
	"strings"
	"time"
)

const apodDateLayout = "2006-01-02"

// APOD mirrors the fields used from the NASA APOD API response.
type APOD struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	MediaType string `json:"media_type"`
	URL       string `json:"url"`
	Copyright string `json:"copyright"`
}

// Day parses Date, returning the zero time when it is missing or invalid.
func (a *APOD) Day() time.Time {
	if a == nil {
		return time.Time{}
	}
	t, err := time.Parse(apodDateLayout, strings.TrimSpace(a.Date))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Comic mirrors the xkcd info.0.json payload.
type Comic struct {
	Num       int    `json:"num"`
	Title     string `json:"title"`
	SafeTitle string `json:"safe_title"`
	Alt       string `json:"alt"`
	Img       string `json:"img"`
	Year      string `json:"year"`
	Month     string `json:"month"`
	Day       string `json:"day"`
}

// DisplayTitle prefers the safe title, then the title, each trimmed.
func (c *Comic) DisplayTitle() string {
	if c == nil {
		return ""
	}
	if t := strings.TrimSpace(c.SafeTitle); t != "" {
		return t
	}
	return strings.TrimSpace(c.Title)
}
