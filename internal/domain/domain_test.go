package domain

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want Date
	}{
		{"sequelize text", "2010-05-01 00:00:00.000 +00:00", NewDate(2010, time.May, 1)},
		{"sequelize text with offset", "2010-05-01 00:00:00.000 +02:00", NewDate(2010, time.April, 30)},
		{"rfc3339 with offset", "2001-02-03T23:30:00-05:00", NewDate(2001, time.February, 4)},
		{"plain date", "1999-12-31", NewDate(1999, time.December, 31)},
		{"rfc3339", "2001-02-03T10:00:00Z", NewDate(2001, time.February, 3)},
		{"bytes", []byte("2020-01-15"), NewDate(2020, time.January, 15)},
		{"time value", time.Date(2015, time.July, 4, 23, 59, 0, 0, time.UTC), NewDate(2015, time.July, 4)},
		{"zoned time value", time.Date(2015, time.July, 5, 1, 0, 0, 0, time.FixedZone("CEST", 2*3600)), NewDate(2015, time.July, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.True(t, tt.want.Equal(d.Time), "got %s want %s", d, tt.want)
		})
	}
}

func TestDateScanRejectsGarbage(t *testing.T) {
	var d Date
	assert.Error(t, d.Scan("not a date"))
	assert.Error(t, d.Scan(nil))
	assert.Error(t, d.Scan(42))
}

func TestDateAddYears(t *testing.T) {
	d := NewDate(2010, time.May, 1)
	assert.Equal(t, "1995-05-01", d.AddYears(-15).String())
	assert.Equal(t, "2025-05-01", d.AddYears(15).String())

	leap := NewDate(2012, time.February, 29)
	assert.Equal(t, "1997-03-01", leap.AddYears(-15).String())
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		D Date `json:"d"`
	}{NewDate(2010, time.May, 1)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2010-05-01"}`, string(b))

	var out struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "2010-05-01", out.D.String())
}

func TestReviewBundleAverageRating(t *testing.T) {
	bundle := ReviewBundle{FilmID: 1, Reviews: []Review{{4}, {5}, {4}}}
	assert.Equal(t, 4.33, bundle.AverageRating())

	assert.Equal(t, 0.0, ReviewBundle{FilmID: 2}.AverageRating())

	near := ReviewBundle{Reviews: []Review{{4}, {4}, {4}, {4}, {4.05}}}
	assert.Equal(t, 4.01, near.AverageRating())

	// 4.004 rounds down to 4.0 and so would not pass a strict > 4.0 filter.
	low := ReviewBundle{Reviews: []Review{{4}, {4}, {4}, {4}, {4.02}}}
	assert.Equal(t, 4.0, low.AverageRating())
}
