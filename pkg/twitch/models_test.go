// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package twitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatViewerCount(t *testing.T) {
	tests := []struct {
		count uint32
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1_000, "1.0K"},
		{1_500, "1.5K"},
		{9_999, "10.0K"},
		{10_000, "10K"},
		{123_456, "123K"},
		{1_000_000, "1.0M"},
		{2_500_000, "2.5M"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatViewerCount(tt.count), "count=%d", tt.count)
	}
}

func TestThumbnailWithSize(t *testing.T) {
	s := Stream{ThumbnailURL: "https://example.com/preview-{width}x{height}.jpg"}
	assert.Equal(t, "https://example.com/preview-320x180.jpg", s.ThumbnailWithSize(320, 180))
}

func TestStreamURL(t *testing.T) {
	s := Stream{UserLogin: "streamfan"}
	assert.Equal(t, "https://www.twitch.tv/streamfan", s.URL())
}

func TestProfileImageWithSize(t *testing.T) {
	u := User{ProfileImageURL: "https://example.com/avatar-300x300.png"}
	assert.Equal(t, "https://example.com/avatar-70x70.png", u.ProfileImageWithSize(70))
}

func TestEnvelopeCursorTreatsEmptyAsAbsent(t *testing.T) {
	absent := envelope[Stream]{}
	assert.Empty(t, absent.cursor())

	empty := envelope[Stream]{Pagination: &pagination{Cursor: ""}}
	assert.Empty(t, empty.cursor())

	present := envelope[Stream]{Pagination: &pagination{Cursor: "abc"}}
	assert.Equal(t, "abc", present.cursor())
}
