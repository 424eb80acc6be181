package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

const (
	ContextUserKey      = "user"
	ContextRequestIDKey = "requestId"
	HeaderRequestID     = "X-Request-ID"
)
