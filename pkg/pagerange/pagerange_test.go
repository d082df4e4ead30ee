// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package pagerange_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendo-live/crescendo/pkg/pagerange"
)

/*
TestParse covers single pages, ranges, mixed tokens, and dedup behaviour.
*/
func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		tokens  []string
		want    []int
		wantErr bool
	}{
		{"single_page", []string{"7"}, []int{7}, false},
		{"multiple_pages", []string{"4", "7"}, []int{4, 7}, false},
		{"range", []string{"431-434"}, []int{431, 432, 433, 434}, false},
		{"mixed_and_unsorted", []string{"9", "2-4", "3"}, []int{2, 3, 4, 9}, false},
		{"duplicates_collapse", []string{"5", "5", "5-6"}, []int{5, 6}, false},
		{"whitespace_tolerated", []string{" 5 ", ""}, []int{5}, false},
		{"zero_page", []string{"0"}, nil, true},
		{"negative_page", []string{"-3"}, nil, true},
		{"inverted_range", []string{"10-4"}, nil, true},
		{"garbage", []string{"abc"}, nil, true},
		{"empty_input", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pagerange.Parse(tt.tokens)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
