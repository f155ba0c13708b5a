package discovery

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ashbyPageFixture = `<html><head>
<script>var other = 1;</script>
<script>
window.__appData = {"jobBoard":{"jobPostings":[
  {"id":"p1","title":"Data Engineer","locationName":"New York, NY","teamName":"Platform {Core}","isListed":true},
  {"id":"p2","title":"Hidden Role","locationName":"Remote","teamName":"Ops","isListed":false},
  {"id":"p3","title":"Backend Engineer \"Infra\"","locationName":"San Francisco, CA","teamName":"Infra"}
]}};
window.__other = {"ignored":true};
</script>
</head><body></body></html>`

func TestExtractAshbyAppData(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(ashbyPageFixture))
	require.NoError(t, err)

	appData, err := extractAshbyAppData(doc)
	require.NoError(t, err)
	require.Len(t, appData.JobBoard.JobPostings, 3)
	assert.Equal(t, "Data Engineer", appData.JobBoard.JobPostings[0].Title)
	assert.Equal(t, `Backend Engineer "Infra"`, appData.JobBoard.JobPostings[2].Title)
}

func TestExtractAshbyAppDataMissingScript(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)

	_, err = extractAshbyAppData(doc)
	assert.Error(t, err)
}

func TestFirstJSONObject(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"plain", `{"a":1};`, `{"a":1}`, true},
		{"nested", `{"a":{"b":2}} trailing`, `{"a":{"b":2}}`, true},
		{"braces in string", `{"a":"}{"} rest`, `{"a":"}{"}`, true},
		{"escaped quote", `{"a":"say \"}\""} rest`, `{"a":"say \"}\""}`, true},
		{"unterminated", `{"a":1`, "", false},
		{"no object", `var x = 1;`, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := firstJSONObject(tc.text)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
