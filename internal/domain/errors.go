package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNetwork indicates a transport, timeout or unexpected status failure
	ErrNetwork = errors.New("network error")

	// ErrDecode indicates a malformed or unexpected feed response
	ErrDecode = errors.New("decode error")

	// ErrStore indicates the local cache failed to persist or read a record
	ErrStore = errors.New("store error")

	// ErrAuthFailed indicates the feed rejected the client credential
	ErrAuthFailed = errors.New("client credential was rejected")

	// ErrRecordNotFound indicates the requested record is not cached
	ErrRecordNotFound = errors.New("record not found")

	// ErrNotConfigured indicates the feed client id is missing
	ErrNotConfigured = errors.New("feed client id is not configured")
)
