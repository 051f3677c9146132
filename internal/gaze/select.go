package gaze

import (
	"log/slog"
	"math/rand"
	"sort"
)

// MinRecordsPerImage is how many viewing sessions an image needs before it
// qualifies for visualization.
const MinRecordsPerImage = 3

// GroupByImage groups all records by (testSet, questionImage).
func (d *Dataset) GroupByImage() map[GroupKey][]Record {
	groups := make(map[GroupKey][]Record)
	for _, r := range d.Records {
		key := GroupKey{TestSet: r.TestSet, QuestionImage: r.QuestionImage}
		groups[key] = append(groups[key], r)
	}
	return groups
}

// RecordsForImage returns every record belonging to one image group.
func (d *Dataset) RecordsForImage(key GroupKey) []Record {
	var records []Record
	for _, r := range d.Records {
		if r.TestSet == key.TestSet && r.QuestionImage == key.QuestionImage {
			records = append(records, r)
		}
	}
	return records
}

// GroupByViewer splits one image group's records into per-viewer sessions,
// keyed and ordered by timestamp.
func GroupByViewer(records []Record) [][]Record {
	byViewer := make(map[string][]Record)
	for _, r := range records {
		byViewer[r.Timestamp] = append(byViewer[r.Timestamp], r)
	}

	timestamps := make([]string, 0, len(byViewer))
	for ts := range byViewer {
		timestamps = append(timestamps, ts)
	}
	sort.Strings(timestamps)

	sessions := make([][]Record, 0, len(timestamps))
	for _, ts := range timestamps {
		sessions = append(sessions, byViewer[ts])
	}
	return sessions
}

// SelectRandomImages picks n image groups uniformly at random, without
// replacement, among the groups that have enough viewing sessions. If fewer
// than n qualify, all qualifying groups are returned with a warning.
func (d *Dataset) SelectRandomImages(rng *rand.Rand, n int) []GroupKey {
	var qualifying []GroupKey
	for key, records := range d.GroupByImage() {
		if len(records) >= MinRecordsPerImage {
			qualifying = append(qualifying, key)
		}
	}

	// Stable order before shuffling so a seeded rng is reproducible.
	sort.Slice(qualifying, func(i, j int) bool {
		if qualifying[i].TestSet != qualifying[j].TestSet {
			return qualifying[i].TestSet < qualifying[j].TestSet
		}
		return qualifying[i].QuestionImage < qualifying[j].QuestionImage
	})

	if len(qualifying) < n {
		slog.Warn("Fewer qualifying images than requested", "requested", n, "found", len(qualifying))
		n = len(qualifying)
	}

	rng.Shuffle(len(qualifying), func(i, j int) {
		qualifying[i], qualifying[j] = qualifying[j], qualifying[i]
	})

	return qualifying[:n]
}
