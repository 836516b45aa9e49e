package db

import "errors"

// Sentinel errors for type-safe error checking
// Use errors.Is() instead of string comparison
var (
	// Profile errors
	ErrUserNotFound = errors.New("user not found")

	// Knowledge base errors
	ErrArticleNotFound = errors.New("article not found")

	// Settings errors
	ErrSettingsNotFound = errors.New("settings not found")
)
