package handlers

import "churchadmin/internal/security"

const (
	SessionCookieName = security.SessionCookieName

	ErrInvalidJSON         = "Invalid JSON body"
	ErrInvalidID           = "Invalid id"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrInternalServerError = "Internal server error"

	// maxBodyBytes bounds JSON request bodies. Backups use maxBackupBytes.
	maxBodyBytes   = 1 << 20
	maxBackupBytes = 64 << 20
)
