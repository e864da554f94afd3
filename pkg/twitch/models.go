// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package twitch

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// User is a Twitch account as returned by the Helix users endpoint.
// Snapshots are immutable; a refetch replaces the value wholesale.
type User struct {
	ID              string    `json:"id"`
	Login           string    `json:"login"`
	DisplayName     string    `json:"display_name"`
	ProfileImageURL string    `json:"profile_image_url"`
	ViewCount       uint64    `json:"view_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// Stream is a live broadcast.
type Stream struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	UserLogin    string    `json:"user_login"`
	UserName     string    `json:"user_name"`
	GameID       string    `json:"game_id"`
	GameName     string    `json:"game_name"`
	Title        string    `json:"title"`
	ViewerCount  uint32    `json:"viewer_count"`
	StartedAt    time.Time `json:"started_at"`
	Language     string    `json:"language"`
	ThumbnailURL string    `json:"thumbnail_url"`
	TagIDs       []string  `json:"tag_ids"`
	IsMature     bool      `json:"is_mature"`
}

// FollowedChannel is one entry from the channels/followed endpoint.
type FollowedChannel struct {
	BroadcasterID    string    `json:"broadcaster_id"`
	BroadcasterLogin string    `json:"broadcaster_login"`
	BroadcasterName  string    `json:"broadcaster_name"`
	FollowedAt       time.Time `json:"followed_at"`
}

// Game is a category a stream can be assigned to.
type Game struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BoxArtURL string `json:"box_art_url"`
}

// envelope is the standard Helix response wrapper.
type envelope[T any] struct {
	Data       []T         `json:"data"`
	Pagination *pagination `json:"pagination,omitempty"`
}

type pagination struct {
	Cursor string `json:"cursor,omitempty"`
}

// cursor returns the continuation cursor, treating an empty string the
// same as an absent pagination object.
func (e *envelope[T]) cursor() string {
	if e.Pagination == nil {
		return ""
	}
	return e.Pagination.Cursor
}

// TokenValidation is the response of the id.twitch.tv validate endpoint.
type TokenValidation struct {
	ClientID  string   `json:"client_id"`
	Login     string   `json:"login"`
	Scopes    []string `json:"scopes"`
	UserID    string   `json:"user_id"`
	ExpiresIn uint64   `json:"expires_in"`
}

// TokenResponse holds an issued access token. Immutable once produced.
type TokenResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	TokenType    string   `json:"token_type"`
	Scope        []string `json:"scope"`
}

// URL returns the public page of the broadcast.
func (s *Stream) URL() string {
	return "https://www.twitch.tv/" + s.UserLogin
}

// ThumbnailWithSize substitutes the {width}x{height} placeholders in the
// thumbnail template URL.
func (s *Stream) ThumbnailWithSize(width, height uint) string {
	url := strings.ReplaceAll(s.ThumbnailURL, "{width}", strconv.FormatUint(uint64(width), 10))
	return strings.ReplaceAll(url, "{height}", strconv.FormatUint(uint64(height), 10))
}

// FormattedViewerCount returns the viewer count humanized for display.
func (s *Stream) FormattedViewerCount() string {
	return FormatViewerCount(s.ViewerCount)
}

// ProfileImageWithSize rewrites the default 300x300 avatar URL to the
// requested square size.
func (u *User) ProfileImageWithSize(size uint) string {
	return strings.ReplaceAll(u.ProfileImageURL, "300x300", fmt.Sprintf("%dx%d", size, size))
}

// FormatViewerCount humanizes a viewer count: 1.0K, 10K, 1.0M buckets.
func FormatViewerCount(count uint32) string {
	switch {
	case count >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(count)/1_000_000)
	case count >= 10_000:
		return fmt.Sprintf("%dK", count/1_000)
	case count >= 1_000:
		return fmt.Sprintf("%.1fK", float64(count)/1_000)
	default:
		return strconv.FormatUint(uint64(count), 10)
	}
}
