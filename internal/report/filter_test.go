package report

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFilterDefaults(t *testing.T) {
	filter, err := BuildFilter(url.Values{}, "")
	require.NoError(t, err)

	assert.Equal(t, 1, filter.Page)
	assert.Equal(t, 1000, filter.Limit)
	assert.Equal(t, 0, filter.Skip())
	assert.Equal(t, ShapeMerchant, filter.Shape)
	assert.Nil(t, filter.MerchantID)
	assert.Nil(t, filter.CourierID)
	assert.Nil(t, filter.CreatedAt)

	q := filter.Query()
	assert.Equal(t, 0, q.Skip)
	assert.Equal(t, 1000, q.Take)
	assert.Equal(t, 0, filter.AllQuery().Take)
}

func TestBuildFilterParsesParams(t *testing.T) {
	values := url.Values{
		"page":       {"3"},
		"limit":      {"25"},
		"merchantId": {"7"},
		"driverId":   {"9"},
		"search":     {"  jakarta "},
		"reportType": {"DRIVER"},
		"startDate":  {"2024-01-01"},
		"endDate":    {"2024-01-05T10:00:00+07:00"},
	}
	filter, err := BuildFilter(values, "")
	require.NoError(t, err)

	assert.Equal(t, 50, filter.Skip())
	require.NotNil(t, filter.MerchantID)
	assert.Equal(t, int64(7), *filter.MerchantID)
	require.NotNil(t, filter.CourierID)
	assert.Equal(t, int64(9), *filter.CourierID)
	assert.Equal(t, "jakarta", filter.Search)
	assert.Equal(t, ShapeDriver, filter.Shape)

	require.NotNil(t, filter.CreatedAt)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *filter.CreatedAt.From)
	assert.Equal(t, time.Date(2024, 1, 5, 3, 0, 0, 0, time.UTC), *filter.CreatedAt.To)

	q := filter.Query()
	assert.Equal(t, 50, q.Skip)
	assert.Equal(t, 25, q.Take)
	assert.Equal(t, filter.CreatedAt, q.CreatedAt)
}

func TestBuildFilterBareEndDateIsNotEndOfDay(t *testing.T) {
	filter, err := BuildFilter(url.Values{"endDate": {"2024-01-05"}}, "")
	require.NoError(t, err)
	require.NotNil(t, filter.CreatedAt)
	assert.Nil(t, filter.CreatedAt.From)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), *filter.CreatedAt.To)
}

func TestBuildFilterFixedShapeWins(t *testing.T) {
	filter, err := BuildFilter(url.Values{"reportType": {"merchant"}}, ShapeDriver)
	require.NoError(t, err)
	assert.Equal(t, ShapeDriver, filter.Shape)
}

func TestBuildFilterRejects(t *testing.T) {
	cases := []struct {
		name   string
		values url.Values
		target error
	}{
		{"page not numeric", url.Values{"page": {"two"}}, ErrInvalidFilter},
		{"page zero", url.Values{"page": {"0"}}, ErrInvalidFilter},
		{"limit too large", url.Values{"limit": {"100001"}}, ErrInvalidFilter},
		{"unknown shape", url.Values{"reportType": {"customer"}}, ErrInvalidFilter},
		{"merchant id text", url.Values{"merchantId": {"abc"}}, ErrInvalidFilter},
		{"inverted range", url.Values{"startDate": {"2024-02-01"}, "endDate": {"2024-01-01"}}, ErrInvalidFilter},
		{"bad date", url.Values{"startDate": {"01/02/2024"}}, ErrInvalidDateFormat},
		{"page overflows offset", url.Values{"page": {"92233720368549"}, "limit": {"100000"}}, ErrInvalidFilter},
		{"page past offset range", url.Values{"page": {"21476"}, "limit": {"100000"}}, ErrInvalidFilter},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildFilter(tc.values, "")
			assert.ErrorIs(t, err, tc.target)
		})
	}
}

func TestBuildFilterLargestPageKeepsPositiveSkip(t *testing.T) {
	filter, err := BuildFilter(url.Values{"page": {"21475"}, "limit": {"100000"}}, "")
	require.NoError(t, err)
	assert.Equal(t, 2147400000, filter.Skip())
	assert.Equal(t, 2147400000, filter.Query().Skip)
}

func TestParseInstantZonelessDateTimeIsUTC(t *testing.T) {
	parsed, err := ParseInstant("2024-06-15T10:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC), parsed)

	parsed, err = ParseInstant("2024-06-15T10:00:00.250")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 15, 10, 0, 0, 250000000, time.UTC), parsed)

	_, err = ParseInstant("2024-06-15 10:00")
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
}
