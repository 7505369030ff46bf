package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(collection, status string, date time.Time) Record {
	return Record{Collection: collection, ID: collection + "-" + status, Status: status, Date: date}
}

func TestSummarizeStatusInvariant(t *testing.T) {
	now := time.Now()
	records := []Record{
		rec("vehicles", "pending", now),
		rec("vehicles", "approved", now),
		rec("vehicles", "approved", now),
		rec("vehicles", "rejected", now),
		rec("vehicles", "garbage", now), // malformed status counts as pending
	}

	c := SummarizeStatus(records)
	assert.Equal(t, 5, c.Total)
	assert.Equal(t, 2, c.Approved)
	assert.Equal(t, 1, c.Rejected)
	assert.Equal(t, 2, c.Pending)
	assert.Equal(t, c.Total, c.Approved+c.Rejected+c.Pending)
}

func TestSummarizeStatusEmpty(t *testing.T) {
	c := SummarizeStatus(nil)
	assert.Zero(t, c.Total)
	assert.Equal(t, c.Total, c.Approved+c.Rejected+c.Pending)
}

func TestSummarizeCompletion(t *testing.T) {
	now := time.Now()
	c := SummarizeCompletion([]Record{
		rec("minors", "complete", now),
		rec("minors", "incomplete", now),
		rec("minors", "", now),
	})
	assert.Equal(t, 3, c.Total)
	assert.Equal(t, 1, c.Complete)
	assert.Equal(t, 2, c.Incomplete)
	assert.Equal(t, c.Total, c.Complete+c.Incomplete)
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2026, 3, 31, 14, 45, 0, 0, time.UTC)

	day := WindowStart(now, WindowDay)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), day)

	week := WindowStart(now, WindowWeek)
	assert.Equal(t, time.Date(2026, 3, 24, 14, 45, 0, 0, time.UTC), week)

	// AddDate normalization: Mar 31 minus one month overflows Feb into
	// early March. Pinned here so a change in the window math is caught.
	month := WindowStart(now, WindowMonth)
	assert.Equal(t, time.Date(2026, 3, 3, 14, 45, 0, 0, time.UTC), month)
}

func TestSince(t *testing.T) {
	since := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	records := []Record{
		rec("vehicles", "pending", since.Add(-time.Hour)),
		rec("vehicles", "pending", since),
		rec("vehicles", "pending", since.Add(time.Hour)),
	}
	got := Since(records, since)
	require.Len(t, got, 2)
}

func TestBucketByHour(t *testing.T) {
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	records := []Record{
		rec("vehicles", "pending", day.Add(8*time.Hour)),
		rec("vehicles", "pending", day.Add(8*time.Hour+30*time.Minute)),
		rec("minors", "complete", day.Add(17*time.Hour)),
	}

	buckets := BucketByHour(records)
	assert.Equal(t, 2, buckets[8])
	assert.Equal(t, 1, buckets[17])

	total := 0
	for _, n := range buckets {
		total += n
	}
	assert.Equal(t, len(records), total)
}

func TestIssues(t *testing.T) {
	now := time.Now()
	records := []Record{
		rec("vehicles", "approved", now),
		rec("vehicles", "pending", now.Add(-2*time.Hour)),
		rec("minors", "incomplete", now.Add(-time.Hour)),
		rec("minors", "complete", now),
	}

	issues := Issues(records)
	require.Len(t, issues, 2)
	// Oldest first.
	assert.Equal(t, "pending", issues[0].Status)
	assert.Equal(t, "incomplete", issues[1].Status)
}
