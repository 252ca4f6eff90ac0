package dynamo

// DynamoDB attribute names used in key, condition and update expressions.
const (
	fieldUserID      = "user_id"
	fieldEmail       = "email"
	fieldSessionID   = "session_id"
	fieldEnable      = "enable"
	fieldTimestamp   = "timestamp"
	fieldStage       = "stage"
	fieldProfile     = "profile"
	fieldPreferences = "preferences"
	fieldUpdatedAt   = "updated_at"
)
