package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoapply/model"
)

func TestFilterJobsCountsEachRejectionOnce(t *testing.T) {
	jobs := []model.JobListing{
		{ID: "1", Title: "Data Engineer", Location: "New York, NY"},
		{ID: "2", Title: "Data Engineer", Location: "New York, NY", Department: "Security Clearance Required"},
		{ID: "3", Title: "Accountant", Location: "New York, NY"},
		{ID: "4", Title: "Senior Data Engineer", Location: "New York, NY"},
		{ID: "5", Title: "Data Engineer", Location: "Toronto, Canada"},
	}
	criteria := model.SearchCriteria{
		Titles:          []string{"Data Engineer"},
		ExcludeKeywords: []string{"clearance"},
		Remote:          true,
	}

	result := FilterJobs(jobs, criteria)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, "1", result.Matched[0].ID)
	assert.Equal(t, FilterCounts{
		Total:            5,
		Matched:          1,
		SkippedTitle:     1,
		SkippedLocation:  1,
		SkippedExclude:   1,
		SkippedSeniority: 1,
	}, result.Counts)
}

func TestFilterJobsExcludesBeatIncludes(t *testing.T) {
	jobs := []model.JobListing{
		{ID: "1", Title: "Staff Data Engineer", Department: "Contract"},
	}
	criteria := model.SearchCriteria{
		Titles:          []string{"data engineer"},
		ExcludeKeywords: []string{"contract"},
	}

	result := FilterJobs(jobs, criteria)
	assert.Empty(t, result.Matched)
	assert.Equal(t, 1, result.Counts.SkippedExclude)
	assert.Equal(t, 0, result.Counts.SkippedSeniority)
}

func TestFilterJobsExperienceKeywords(t *testing.T) {
	jobs := []model.JobListing{
		{ID: "1", Title: "Data Engineer, New Grad", Location: "Austin, Texas"},
		{ID: "2", Title: "Data Engineer", Location: "Austin, Texas"},
	}
	criteria := model.SearchCriteria{
		Titles:     []string{"data engineer"},
		Experience: []string{"new grad", "entry level"},
	}

	result := FilterJobs(jobs, criteria)
	require.Len(t, result.Matched, 1)
	assert.Equal(t, "1", result.Matched[0].ID)
	assert.Equal(t, 1, result.Counts.SkippedExperience)
}

func TestFilterJobsWithoutCriteriaKeepsNonExcludedRoles(t *testing.T) {
	jobs := []model.JobListing{
		{ID: "1", Title: "Data Engineer"},
		{ID: "2", Title: "Technical Recruiter"},
	}

	result := FilterJobs(jobs, model.SearchCriteria{})
	require.Len(t, result.Matched, 1)
	assert.Equal(t, "1", result.Matched[0].ID)
	assert.Equal(t, 1, result.Counts.SkippedSeniority)
}

func TestFilterJobsRoleKeywordTiers(t *testing.T) {
	jobs := []model.JobListing{
		{ID: "1", Title: "Data Analyst"},
		{ID: "2", Title: "Analytics Engineer"},
		{ID: "3", Title: "Data Platform Engineer"},
		{ID: "4", Title: "Backend Engineer"},
		{ID: "5", Title: "Data Science Engineer"},
	}
	criteria := model.SearchCriteria{
		RoleKeywords: []string{"data analyst", "business intelligence"},
	}

	result := FilterJobs(jobs, criteria)

	// Tier one names a role keyword; tier two accepts analytics/data titles
	// unless they are science roles.
	require.Len(t, result.Matched, 3)
	assert.Equal(t, "1", result.Matched[0].ID)
	assert.Equal(t, "2", result.Matched[1].ID)
	assert.Equal(t, "3", result.Matched[2].ID)
	assert.Equal(t, 2, result.Counts.SkippedRole)
}

func TestIsUSLocation(t *testing.T) {
	cases := []struct {
		location string
		want     bool
	}{
		{"san francisco, ca", true},
		{"new york, new york", true},
		{"austin, texas", true},
		{"united states", true},
		{"london, united kingdom", false},
		{"toronto, canada", false},
		{"berlin, germany", false},
		{"remote", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, isUSLocation(tc.location), "location %q", tc.location)
	}
}
