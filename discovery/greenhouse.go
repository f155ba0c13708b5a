package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"autoapply/model"
)

type greenhouseJob struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Departments []struct {
		Name string `json:"name"`
	} `json:"departments"`
	AbsoluteURL string `json:"absolute_url"`
}

func (d *Discoverer) fetchGreenhouse(ctx context.Context, slug string) ([]model.JobListing, error) {
	url := fmt.Sprintf("https://boards-api.greenhouse.io/v1/boards/%s/jobs?content=true", slug)
	resp, err := d.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", slug, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("greenhouse fetch for %s: status %d", slug, resp.StatusCode)
	}

	var payload struct {
		Jobs []greenhouseJob `json:"jobs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("greenhouse parse for %s: %w", slug, err)
	}

	listings := make([]model.JobListing, 0, len(payload.Jobs))
	for _, job := range payload.Jobs {
		id := strconv.FormatInt(job.ID, 10)
		applyURL := job.AbsoluteURL
		if applyURL == "" {
			applyURL = fmt.Sprintf("https://boards.greenhouse.io/%s/jobs/%s", slug, id)
		}
		department := ""
		if len(job.Departments) > 0 {
			department = job.Departments[0].Name
		}
		listings = append(listings, model.JobListing{
			ID:          id,
			Board:       "greenhouse",
			URL:         applyURL,
			Title:       job.Title,
			Company:     slug,
			CompanySlug: slug,
			Location:    job.Location.Name,
			Department:  department,
		})
	}
	return listings, nil
}
