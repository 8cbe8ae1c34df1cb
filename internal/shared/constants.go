package shared

const (
	ContextUserID    = "userID"
	ContextUsername  = "username"
	ContextRequestID = "requestID"

	HeaderRequestID = "X-Request-ID"

	MaxTags      = 10
	MaxTagLength = 32
)
