package scraper

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSearchURL(t *testing.T) {
	b, err := NewSearchQueryBuilder("https://www.ebay.co.uk", 50, "")
	require.NoError(t, err)

	raw := b.Build("vintage omega watch", 2)
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "www.ebay.co.uk", u.Host)
	assert.Equal(t, "/sch/i.html", u.Path)

	q := u.Query()
	assert.Equal(t, "vintage omega watch", q.Get("_nkw"))
	assert.Equal(t, "1", q.Get("LH_Sold"))
	assert.Equal(t, "1", q.Get("LH_Complete"))
	assert.Equal(t, "13", q.Get("_sop"))
	assert.Equal(t, "50", q.Get("_ipg"))
	assert.Equal(t, "2", q.Get("_pgn"))
	assert.Empty(t, q.Get("LH_ItemCondition"))
}

func TestBuildSearchURLDeterministic(t *testing.T) {
	b, err := NewSearchQueryBuilder("https://www.ebay.co.uk", 50, "")
	require.NoError(t, err)

	assert.Equal(t, b.Build("widget", 1), b.Build("widget", 1))
}

func TestBuildSearchURLEncodesQuery(t *testing.T) {
	b, err := NewSearchQueryBuilder("https://www.ebay.co.uk", 50, "")
	require.NoError(t, err)

	raw := b.Build("50% off & more?", 1)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "50% off & more?", u.Query().Get("_nkw"))
}

func TestBuildSearchURLConditionFilter(t *testing.T) {
	b, err := NewSearchQueryBuilder("https://www.ebay.co.uk", 50, "3000")
	require.NoError(t, err)

	u, err := url.Parse(b.Build("widget", 1))
	require.NoError(t, err)
	assert.Equal(t, "3000", u.Query().Get("LH_ItemCondition"))
}

func TestBuildSearchURLClampsPageIndex(t *testing.T) {
	b, err := NewSearchQueryBuilder("https://www.ebay.co.uk", 50, "")
	require.NoError(t, err)

	u, err := url.Parse(b.Build("widget", 0))
	require.NoError(t, err)
	assert.Equal(t, "1", u.Query().Get("_pgn"))
}

func TestNewSearchQueryBuilderRejectsBadBase(t *testing.T) {
	_, err := NewSearchQueryBuilder("not a url at all://", 50, "")
	assert.Error(t, err)

	_, err = NewSearchQueryBuilder("/relative/only", 50, "")
	assert.Error(t, err)
}
