// Package report derives the dashboard and export numbers from the record
// collections. Everything here is computed, nothing is stored: the service
// keeps a cached snapshot and drops it whenever the event bus reports a
// record change.
package report

import (
	"sort"
	"time"

	"frontera/internal/lifecycle"
)

// Record is the aggregation view of any checkpoint record: just enough to
// count, bucket, and name it in an issue list.
type Record struct {
	Collection string    `json:"collection"`
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Category   string    `json:"category,omitempty"`
	Status     string    `json:"status"`
	Date       time.Time `json:"date"`
}

// StatusCounts breaks a workflow collection down by review status.
// Invariant: Approved+Rejected+Pending == Total.
type StatusCounts struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Pending  int `json:"pending"`
}

// CompletionCounts breaks a derived-status collection down.
// Invariant: Complete+Incomplete == Total.
type CompletionCounts struct {
	Total      int `json:"total"`
	Complete   int `json:"complete"`
	Incomplete int `json:"incomplete"`
}

// SummarizeStatus counts a workflow collection. Unknown statuses count as
// pending so the totals invariant holds even over malformed data.
func SummarizeStatus(records []Record) StatusCounts {
	var c StatusCounts
	for _, r := range records {
		c.Total++
		switch lifecycle.Status(r.Status) {
		case lifecycle.StatusApproved:
			c.Approved++
		case lifecycle.StatusRejected:
			c.Rejected++
		default:
			c.Pending++
		}
	}
	return c
}

// SummarizeCompletion counts a derived-status collection. Anything not
// explicitly complete counts as incomplete.
func SummarizeCompletion(records []Record) CompletionCounts {
	var c CompletionCounts
	for _, r := range records {
		c.Total++
		if r.Status == "complete" {
			c.Complete++
		} else {
			c.Incomplete++
		}
	}
	return c
}

// Window selects the traffic report's time span.
type Window string

const (
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

func (w Window) Valid() bool {
	switch w {
	case WindowDay, WindowWeek, WindowMonth:
		return true
	}
	return false
}

// WindowStart computes the window's lower bound. Day means since local
// midnight; month uses AddDate's native normalization, so Jan 31 minus one
// month lands in early January rather than clamping to Dec 31. The windows
// feed coarse dashboard counts, where that drift is acceptable.
func WindowStart(now time.Time, w Window) time.Time {
	switch w {
	case WindowDay:
		year, month, day := now.Date()
		return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	case WindowWeek:
		return now.AddDate(0, 0, -7)
	case WindowMonth:
		return now.AddDate(0, -1, 0)
	default:
		return now
	}
}

// Since keeps records dated inside [since, now].
func Since(records []Record, since time.Time) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.Date.Before(since) {
			out = append(out, r)
		}
	}
	return out
}

// BucketByHour distributes records over the 24 hours of the day, local to
// each record's timestamp.
func BucketByHour(records []Record) [24]int {
	var buckets [24]int
	for _, r := range records {
		buckets[r.Date.Hour()]++
	}
	return buckets
}

// Issue is one entry in the outstanding-work list.
type Issue struct {
	Collection string    `json:"collection"`
	RecordID   string    `json:"record_id"`
	Label      string    `json:"label"`
	Status     string    `json:"status"`
	Date       time.Time `json:"date"`
}

// Issues lists the records still needing attention: pending reviews and
// incomplete document sets, oldest first.
func Issues(records []Record) []Issue {
	out := make([]Issue, 0)
	for _, r := range records {
		if r.Status != string(lifecycle.StatusPending) && r.Status != "incomplete" {
			continue
		}
		out = append(out, Issue{
			Collection: r.Collection,
			RecordID:   r.ID,
			Label:      r.Label,
			Status:     r.Status,
			Date:       r.Date,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
