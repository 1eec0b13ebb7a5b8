package visitors_core

type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

const (
	ErrorInvalidCount          = "INVALID_COUNT"
	ErrorInsufficientDiskSpace = "INSUFFICIENT_DISK_SPACE"
	ErrorOutputNotWritable     = "OUTPUT_NOT_WRITABLE"
	ErrorBatchNotFound         = "BATCH_NOT_FOUND"
	ErrorRateLimitExceeded     = "RATE_LIMIT_EXCEEDED"
)

// Error codes reported by batch verification
const (
	ErrorNotAnArray           = "NOT_AN_ARRAY"
	ErrorCountMismatch        = "COUNT_MISMATCH"
	ErrorMissingField         = "MISSING_FIELD"
	ErrorUnexpectedField      = "UNEXPECTED_FIELD"
	ErrorInvalidFieldType     = "INVALID_FIELD_TYPE"
	ErrorUnknownOrganization  = "UNKNOWN_ORGANIZATION"
	ErrorUnknownPath          = "UNKNOWN_PATH"
	ErrorUnknownUserAgent     = "UNKNOWN_USER_AGENT"
	ErrorUnknownTrafficSource = "UNKNOWN_TRAFFIC_SOURCE"
	ErrorValueOutOfRange      = "VALUE_OUT_OF_RANGE"
	ErrorInvalidTimestamp     = "INVALID_TIMESTAMP"
	ErrorTimestampOutOfWindow = "TIMESTAMP_OUT_OF_WINDOW"
	ErrorInvalidReferrer      = "INVALID_REFERRER"
)
