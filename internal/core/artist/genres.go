// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package artist

import "strings"

// MergeGenres merges incoming genres into the existing list without ever
// shrinking it.
//
// Matching is case-insensitive on the trimmed value. Existing genres keep
// their position; genres seen only in incoming are appended in order. When
// the same genre appears in both lists the incoming casing wins, so
// upstream casing corrections propagate without creating duplicates.
func MergeGenres(existing, incoming []string) []string {
	merged := make([]string, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing)+len(incoming))

	for _, genre := range existing {
		value := strings.TrimSpace(genre)
		if value == "" {
			continue
		}
		key := strings.ToLower(value)
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = len(merged)
		merged = append(merged, value)
	}

	for _, genre := range incoming {
		value := strings.TrimSpace(genre)
		if value == "" {
			continue
		}
		key := strings.ToLower(value)
		if at, ok := index[key]; ok {
			merged[at] = value
			continue
		}
		index[key] = len(merged)
		merged = append(merged, value)
	}

	return merged
}

// GenresEqual reports whether two genre lists are identical, used to skip
// no-op genre updates.
func GenresEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
