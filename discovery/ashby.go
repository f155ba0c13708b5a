package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"autoapply/model"
)

const ashbyAppDataMarker = "window.__appData ="

type ashbyPosting struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	LocationName string `json:"locationName"`
	TeamName     string `json:"teamName"`
	IsListed     *bool  `json:"isListed"`
}

type ashbyAppData struct {
	JobBoard struct {
		JobPostings []ashbyPosting `json:"jobPostings"`
	} `json:"jobBoard"`
}

// Ashby boards render the posting list from a JSON blob embedded in an
// inline script rather than exposing a JSON API.
func (d *Discoverer) fetchAshby(ctx context.Context, slug string) ([]model.JobListing, error) {
	url := fmt.Sprintf("https://jobs.ashbyhq.com/%s", slug)
	resp, err := d.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", slug, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("ashby fetch for %s: status %d", slug, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ashby parse for %s: %w", slug, err)
	}

	appData, err := extractAshbyAppData(doc)
	if err != nil {
		return nil, fmt.Errorf("ashby app data for %s: %w", slug, err)
	}

	listings := make([]model.JobListing, 0, len(appData.JobBoard.JobPostings))
	for _, posting := range appData.JobBoard.JobPostings {
		if posting.IsListed != nil && !*posting.IsListed {
			continue
		}
		listings = append(listings, model.JobListing{
			ID:          posting.ID,
			Board:       "ashby",
			URL:         fmt.Sprintf("https://jobs.ashbyhq.com/%s/%s", slug, posting.ID),
			Title:       posting.Title,
			Company:     slug,
			CompanySlug: slug,
			Location:    posting.LocationName,
			Department:  posting.TeamName,
		})
	}
	return listings, nil
}

func extractAshbyAppData(doc *goquery.Document) (*ashbyAppData, error) {
	var raw string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if idx := strings.Index(text, ashbyAppDataMarker); idx >= 0 {
			raw = text[idx+len(ashbyAppDataMarker):]
			return false
		}
		return true
	})
	if raw == "" {
		return nil, fmt.Errorf("app data script not found")
	}

	jsonText, ok := firstJSONObject(raw)
	if !ok {
		return nil, fmt.Errorf("app data object not found")
	}
	var appData ashbyAppData
	if err := json.Unmarshal([]byte(jsonText), &appData); err != nil {
		return nil, fmt.Errorf("decode app data: %w", err)
	}
	return &appData, nil
}

// firstJSONObject returns the first brace-balanced object in text. The app
// data assignment ends with arbitrary script, so the JSON boundary has to be
// found by depth counting.
func firstJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
