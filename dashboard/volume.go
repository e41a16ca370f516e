// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"math"
	"time"

	"github.com/ledgerline/console/api"
)

// VolumeRange selects the bucket layout for the settled-volume chart.
type VolumeRange string

const (
	// RangeAll buckets by day, spanning every observed entry and
	// padded to at least a week.
	RangeAll VolumeRange = "ALL"
	// RangeDay is 24 hourly buckets over the trailing 24 hours.
	RangeDay VolumeRange = "1D"
	// RangeHour is 12 five-minute buckets over the trailing hour.
	RangeHour VolumeRange = "1H"
)

// minDailyBuckets pads the ALL range so a young environment still
// renders a week-wide chart.
const minDailyBuckets = 7

// VolumeBucket is one fixed-width interval of the chart.
type VolumeBucket struct {
	Start time.Time
	Sum   float64
	Count int
}

// Volume is the aggregated settled-volume chart data.
type Volume struct {
	Range    VolumeRange
	Buckets  []VolumeBucket
	Total    float64
	Currency string
}

// AggregateVolume reduces ledger entries into fixed-width buckets.
// The aggregation is deliberately client-side over the full drained
// collection — the backend has no aggregation endpoint.
//
// Entries with unparseable timestamps or non-finite amounts are
// skipped outright: excluded from sums and counts, never counted as
// zero. For the trailing ranges, entries outside the window are
// likewise skipped. The currency comes from the first entry that
// declares one, defaulting to USD.
func AggregateVolume(entries []api.LedgerEntry, volumeRange VolumeRange, now time.Time) Volume {
	volume := Volume{Range: volumeRange, Currency: "USD"}
	for _, entry := range entries {
		if entry.Currency != "" {
			volume.Currency = entry.Currency
			break
		}
	}

	switch volumeRange {
	case RangeDay:
		volume.Buckets = trailingBuckets(now, time.Hour, 24)
	case RangeHour:
		volume.Buckets = trailingBuckets(now, 5*time.Minute, 12)
	default:
		volume.Buckets = dailyBuckets(entries, now)
	}

	width := bucketWidth(volumeRange)
	for _, entry := range entries {
		when, ok := parseEntryTime(entry)
		if !ok {
			continue
		}
		index := bucketIndex(volume.Buckets, when, width)
		if index < 0 {
			continue
		}
		volume.Buckets[index].Sum += entry.Amount
		volume.Buckets[index].Count++
		volume.Total += entry.Amount
	}
	return volume
}

func bucketWidth(volumeRange VolumeRange) time.Duration {
	switch volumeRange {
	case RangeDay:
		return time.Hour
	case RangeHour:
		return 5 * time.Minute
	default:
		return 24 * time.Hour
	}
}

// parseEntryTime validates the timestamp and the amount together: an
// entry is usable only when both are.
func parseEntryTime(entry api.LedgerEntry) (time.Time, bool) {
	if math.IsNaN(entry.Amount) || math.IsInf(entry.Amount, 0) {
		return time.Time{}, false
	}
	when, err := time.Parse(time.RFC3339, entry.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return when.UTC(), true
}

// trailingBuckets lays out count buckets of the given width ending at
// the bucket containing now.
func trailingBuckets(now time.Time, width time.Duration, count int) []VolumeBucket {
	last := now.UTC().Truncate(width)
	buckets := make([]VolumeBucket, count)
	for i := range buckets {
		buckets[i].Start = last.Add(-time.Duration(count-1-i) * width)
	}
	return buckets
}

// dailyBuckets spans the observed min and max entry days, padded
// backwards to at least a week. With no usable entries the trailing
// week ending today is rendered empty.
func dailyBuckets(entries []api.LedgerEntry, now time.Time) []VolumeBucket {
	var minDay, maxDay time.Time
	for _, entry := range entries {
		when, ok := parseEntryTime(entry)
		if !ok {
			continue
		}
		day := when.Truncate(24 * time.Hour)
		if minDay.IsZero() || day.Before(minDay) {
			minDay = day
		}
		if maxDay.IsZero() || day.After(maxDay) {
			maxDay = day
		}
	}

	if maxDay.IsZero() {
		maxDay = now.UTC().Truncate(24 * time.Hour)
		minDay = maxDay
	}

	days := int(maxDay.Sub(minDay)/(24*time.Hour)) + 1
	if days < minDailyBuckets {
		minDay = maxDay.Add(-time.Duration(minDailyBuckets-1) * 24 * time.Hour)
		days = minDailyBuckets
	}

	buckets := make([]VolumeBucket, days)
	for i := range buckets {
		buckets[i].Start = minDay.Add(time.Duration(i) * 24 * time.Hour)
	}
	return buckets
}

// bucketIndex locates the bucket containing when, or -1 when it falls
// outside the layout.
func bucketIndex(buckets []VolumeBucket, when time.Time, width time.Duration) int {
	if len(buckets) == 0 {
		return -1
	}
	first := buckets[0].Start
	if when.Before(first) {
		return -1
	}
	index := int(when.Sub(first) / width)
	if index >= len(buckets) {
		return -1
	}
	return index
}
