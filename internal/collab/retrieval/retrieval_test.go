package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndex() *Index {
	return NewIndex([]Document{
		{Content: "Reboot the router and wait for the lights", Metadata: map[string]string{"topic": "internet_down"}},
		{Content: "Run a wired speed test to measure throughput", Metadata: map[string]string{"topic": "slow_speed"}},
		{Content: "Move the router away from walls for better wifi coverage", Metadata: map[string]string{"topic": "wifi_issue"}},
	})
}

func TestRetrieveRanksByOverlap(t *testing.T) {
	idx := testIndex()

	docs, err := idx.Retrieve(context.Background(), "router reboot lights", 3, 0.1)
	require.NoError(t, err)
	require.NotEmpty(t, docs)

	assert.Equal(t, "internet_down", docs[0].Metadata["topic"])
	for i := 1; i < len(docs); i++ {
		assert.GreaterOrEqual(t, docs[i-1].Score, docs[i].Score)
	}
}

func TestRetrieveThresholdFiltersWeakMatches(t *testing.T) {
	idx := testIndex()

	docs, err := idx.Retrieve(context.Background(), "television remote buttons", 3, 0.5)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestRetrieveTopKLimits(t *testing.T) {
	idx := testIndex()

	docs, err := idx.Retrieve(context.Background(), "router", 1, 0.1)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestRetrieveEmptyQuery(t *testing.T) {
	idx := testIndex()

	docs, err := idx.Retrieve(context.Background(), "  ", 3, 0.1)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoadDefaultKnowledge(t *testing.T) {
	idx, err := LoadDefault()
	require.NoError(t, err)

	docs, err := idx.Retrieve(context.Background(), "interneto greitis lėtas", 3, 0.2)
	require.NoError(t, err)
	assert.NotEmpty(t, docs)
}
