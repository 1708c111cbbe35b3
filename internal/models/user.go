package models

import "time"

// User is the durable record of a provider account, keyed by UID.
// A completed login always replaces the whole record.
type User struct {
	UID          string    `json:"uid"`
	DisplayName  string    `json:"display_name,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ProfileURL   string    `json:"profile_url,omitempty"`
	APIURL       string    `json:"api_url,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserInfo is the provider profile returned after a token exchange.
type UserInfo struct {
	ID          string
	DisplayName string
	AvatarURL   string
	ProfileURL  string
	APIURL      string
}
