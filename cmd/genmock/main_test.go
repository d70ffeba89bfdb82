package main

import (
	"context"
	"testing"

	"github.com/couchcryptid/travel-trends-collector/internal/collector"
	"github.com/couchcryptid/travel-trends-collector/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryLines_SortedByCountry(t *testing.T) {
	res := collector.Result{Rows: []domain.CollectedRow{
		{Country: "Peru"}, {Country: "Japan"}, {Country: "Peru"},
		{Country: "Australia"}, {Country: "Japan"}, {Country: "Peru"},
	}}

	for range 10 {
		assert.Equal(t, []string{
			"  Australia            1 rows",
			"  Japan                2 rows",
			"  Peru                 3 rows",
		}, summaryLines(res))
	}
}

func TestSummaryLines_NoRows(t *testing.T) {
	assert.Empty(t, summaryLines(collector.Result{}))
}

func TestSyntheticCollaboratorsAreStable(t *testing.T) {
	ctx := context.Background()

	a, err := syntheticGeocoder{}.Lookup(ctx, "Kyoto", "JP")
	require.NoError(t, err)
	b, err := syntheticGeocoder{}.Lookup(ctx, "Kyoto", "JP")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	q := domain.TrendQuery{Keyword: "hiking", GeoCode: "JP"}
	first, err := syntheticTrends{}.Interest(ctx, q)
	require.NoError(t, err)
	second, err := syntheticTrends{}.Interest(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
