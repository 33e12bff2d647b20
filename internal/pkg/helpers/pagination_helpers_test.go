package helpers

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/paperarchive/internal/pkg/apperrors"
)

func TestParsePageRequest(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		want      PageRequest
		wantField string
	}{
		{name: "defaults", want: PageRequest{Page: 1, Limit: 10}},
		{name: "explicit values", page: "3", limit: "25", want: PageRequest{Page: 3, Limit: 25}},
		{name: "whitespace trimmed", page: " 2 ", limit: " 5", want: PageRequest{Page: 2, Limit: 5}},
		{name: "limit clamped to max", page: "1", limit: "5000", want: PageRequest{Page: 1, Limit: 100}},
		{name: "page far beyond data still accepted", page: "999", want: PageRequest{Page: 999, Limit: 10}},
		{name: "huge page accepted", page: "1152921504606846977", limit: "16", want: PageRequest{Page: 1152921504606846977, Limit: 16}},
		{name: "non numeric page", page: "abc", wantField: "page"},
		{name: "zero page", page: "0", wantField: "page"},
		{name: "negative limit", limit: "-1", wantField: "limit"},
		{name: "non numeric limit", limit: "ten", wantField: "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePageRequest(tt.page, tt.limit, 10, 100)
			if tt.wantField != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
				var ve *apperrors.ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, tt.wantField, ve.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePageRequest_BadDefaults(t *testing.T) {
	got, err := ParsePageRequest("", "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, PageRequest{Page: 1, Limit: DefaultPageSize}, got)

	got, err = ParsePageRequest("", "", 50, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Limit)
}

func TestPageRequestOffset(t *testing.T) {
	assert.Equal(t, uint64(0), PageRequest{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, uint64(20), PageRequest{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, uint64(700), PageRequest{Page: 8, Limit: 100}.Offset())
	assert.Equal(t, uint64(math.MaxUint64), PageRequest{Page: 1152921504606846977, Limit: 16}.Offset())
	assert.Equal(t, uint64(math.MaxUint64), PageRequest{Page: math.MaxInt, Limit: 100}.Offset())
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{100, 100, 1},
		{101, 100, 2},
		{7, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.limit), "total=%d limit=%d", tt.total, tt.limit)
	}
}

func TestEscapeLikePattern(t *testing.T) {
	assert.Equal(t, "data", EscapeLikePattern("data"))
	assert.Equal(t, `100\%`, EscapeLikePattern("100%"))
	assert.Equal(t, `a\_b`, EscapeLikePattern("a_b"))
	assert.Equal(t, `c:\\tmp`, EscapeLikePattern(`c:\tmp`))
}

func TestNullableString(t *testing.T) {
	assert.Nil(t, NullableString("   "))
	v := NullableString(" MIT ")
	require.NotNil(t, v)
	assert.Equal(t, "MIT", *v)
}
