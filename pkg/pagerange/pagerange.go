// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

// Package pagerange parses operator-supplied page selections for targeted
// retry runs.
//
// # Overview
//
// Operators re-invoke the sync engine against exactly the pages a previous
// run reported as failed. Selections combine single pages and inclusive
// ranges: "431 432 440-445". The parsed result is sorted and deduplicated so
// no page is fetched twice regardless of how the selection was written.
package pagerange

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Parse converts a list of page tokens into a sorted, deduplicated page set.
//
// Accepted token forms:
//   - "7"       a single page number (must be >= 1)
//   - "431-440" an inclusive range (start <= end, both >= 1)
func Parse(tokens []string) ([]int, error) {
	pages := map[int]struct{}{}

	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if strings.Contains(token, "-") {
			start, end, err := parseRange(token)
			if err != nil {
				return nil, err
			}
			for page := start; page <= end; page++ {
				pages[page] = struct{}{}
			}
			continue
		}

		page, err := strconv.Atoi(token)
		if err != nil || page < 1 {
			return nil, fmt.Errorf("pagerange: invalid page %q", token)
		}
		pages[page] = struct{}{}
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("pagerange: no pages supplied")
	}

	result := make([]int, 0, len(pages))
	for page := range pages {
		result = append(result, page)
	}
	sort.Ints(result)

	return result, nil
}

// parseRange parses an inclusive "start-end" token.
func parseRange(token string) (int, int, error) {
	parts := strings.SplitN(token, "-", 2)

	start, startErr := strconv.Atoi(strings.TrimSpace(parts[0]))
	end, endErr := strconv.Atoi(strings.TrimSpace(parts[1]))

	if startErr != nil || endErr != nil || start < 1 || end < start {
		return 0, 0, fmt.Errorf("pagerange: invalid range %q", token)
	}

	return start, end, nil
}
