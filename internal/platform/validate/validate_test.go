// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendo-live/crescendo/internal/platform/syncerr"
)

func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   string
		wantErr bool
	}{
		{"valid_string", "source", "showgrid", false},
		{"empty_string", "source", "", true},
		{"whitespace_only", "source", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Validator{}
			err := v.Required(tt.field, tt.value).Err()
			if tt.wantErr {
				require.Error(t, err)
				se := syncerr.As(err)
				require.NotNil(t, se)
				assert.Equal(t, "VALIDATION_ERROR", se.Code)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_Range(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		min     int
		max     int
		wantErr bool
	}{
		{"within_range", 5, 1, 64, false},
		{"at_min", 1, 1, 64, false},
		{"at_max", 64, 1, 64, false},
		{"below_min", 0, 1, 64, true},
		{"above_max", 65, 1, 64, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Validator{}
			err := v.Range("workers", tt.value, tt.min, tt.max).Err()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_Min(t *testing.T) {
	v := &Validator{}
	assert.NoError(t, v.Min("page", 1, 1).Err())

	v = &Validator{}
	assert.Error(t, v.Min("page", 0, 1).Err())
}

func TestValidator_Custom(t *testing.T) {
	v := &Validator{}
	err := v.Custom("pages", true, "Pages must be ascending").Err()
	require.Error(t, err)

	se := syncerr.As(err)
	require.NotNil(t, se)
	require.Len(t, se.Details, 1)
	assert.Equal(t, "pages", se.Details[0].Field)
	assert.Equal(t, "Pages must be ascending", se.Details[0].Message)
}

func TestValidator_Chaining(t *testing.T) {
	v := &Validator{}
	err := v.
		Required("source", "").
		Range("workers", 100, 1, 64).
		NotEmpty("pages", 0).
		Err()

	require.Error(t, err)
	se := syncerr.As(err)
	require.NotNil(t, se)
	assert.Len(t, se.Details, 3)
	assert.True(t, v.HasErrors())
}
