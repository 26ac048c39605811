// Package common contains shared constants and sentinel errors used across
// filedo components.
package common

// RequestIDHeaderName is the HTTP header used to carry the request id.
const RequestIDHeaderName = "X-Request-Id"

// ArchivePrefix and ArchiveExtension form the staged archive file name:
// <ArchivePrefix><uuid><ArchiveExtension>.
const (
	ArchivePrefix    = "secure_file_"
	ArchiveExtension = ".zip"
)
