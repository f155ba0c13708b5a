package discovery

import (
	"context"
	"encoding/json"
	"fmt"

	"autoapply/model"
)

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Categories struct {
		Location string `json:"location"`
		Team     string `json:"team"`
	} `json:"categories"`
	ApplyURL string `json:"applyUrl"`
}

func (d *Discoverer) fetchLever(ctx context.Context, slug string) ([]model.JobListing, error) {
	url := fmt.Sprintf("https://api.lever.co/v0/postings/%s", slug)
	resp, err := d.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", slug, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("lever fetch for %s: status %d", slug, resp.StatusCode)
	}

	var postings []leverPosting
	if err := json.NewDecoder(resp.Body).Decode(&postings); err != nil {
		return nil, fmt.Errorf("lever parse for %s: %w", slug, err)
	}

	listings := make([]model.JobListing, 0, len(postings))
	for _, posting := range postings {
		applyURL := posting.ApplyURL
		if applyURL == "" {
			applyURL = fmt.Sprintf("https://jobs.lever.co/%s/%s", slug, posting.ID)
		}
		listings = append(listings, model.JobListing{
			ID:          posting.ID,
			Board:       "lever",
			URL:         applyURL,
			Title:       posting.Text,
			Company:     slug,
			CompanySlug: slug,
			Location:    posting.Categories.Location,
			Department:  posting.Categories.Team,
		})
	}
	return listings, nil
}
