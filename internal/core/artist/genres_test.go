// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package artist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeGenres(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		incoming []string
		want     []string
	}{
		{
			name:     "disjoint_lists_append",
			existing: []string{"rock"},
			incoming: []string{"jazz", "funk"},
			want:     []string{"rock", "jazz", "funk"},
		},
		{
			name:     "case_insensitive_dedup",
			existing: []string{"Rock", "indie"},
			incoming: []string{"rock", "Indie", "folk"},
			want:     []string{"rock", "Indie", "folk"},
		},
		{
			name:     "empty_incoming_never_shrinks",
			existing: []string{"rock", "jazz"},
			incoming: nil,
			want:     []string{"rock", "jazz"},
		},
		{
			name:     "empty_existing",
			existing: nil,
			incoming: []string{"metal"},
			want:     []string{"metal"},
		},
		{
			name:     "whitespace_and_blanks_dropped",
			existing: []string{"  rock  ", ""},
			incoming: []string{" rock", "  ", "blues"},
			want:     []string{"rock", "blues"},
		},
		{
			name:     "duplicates_within_incoming",
			existing: nil,
			incoming: []string{"Pop", "pop", "POP"},
			want:     []string{"POP"},
		},
		{
			name:     "both_empty",
			existing: nil,
			incoming: nil,
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeGenres(tt.existing, tt.incoming))
		})
	}
}

func TestGenresEqual(t *testing.T) {
	assert.True(t, GenresEqual(nil, nil))
	assert.True(t, GenresEqual([]string{"a", "b"}, []string{"a", "b"}))
	assert.False(t, GenresEqual([]string{"a"}, []string{"b"}))
	assert.False(t, GenresEqual([]string{"a"}, []string{"a", "b"}))
	assert.False(t, GenresEqual([]string{"A"}, []string{"a"}))
}
