// Package greenhouse drives apply attempts against Greenhouse-hosted
// listings: locate the apply form through a fallback chain, map and fill it,
// then submit or stop short depending on dry-run mode and the policy gate.
package greenhouse

import (
	"context"

	"autoapply/boards"
	"autoapply/discovery"
	"autoapply/model"
)

const boardName = "greenhouse"

// Connector implements boards.Connector for Greenhouse.
type Connector struct {
	discoverer *discovery.Discoverer
}

func NewConnector(discoverer *discovery.Discoverer) *Connector {
	return &Connector{discoverer: discoverer}
}

func (c *Connector) Name() string {
	return boardName
}

// Search sweeps the configured boards and keeps the Greenhouse listings that
// survive the criteria filter.
func (c *Connector) Search(ctx context.Context, criteria model.SearchCriteria) ([]model.JobListing, error) {
	result, err := c.discoverer.Discover(ctx)
	if err != nil {
		return nil, err
	}
	filtered := discovery.FilterJobs(result.Jobs, criteria)
	listings := make([]model.JobListing, 0, len(filtered.Matched))
	for _, listing := range filtered.Matched {
		if listing.Board == boardName {
			listings = append(listings, listing)
		}
	}
	return listings, nil
}

var _ boards.Connector = (*Connector)(nil)
