package constants

import "time"

const (
	DefaultRequestTimeout = 30 * time.Second
	ShutdownTimeout       = 10 * time.Second

	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 25
	DatabaseConnMaxLifetime = 5 // minutes
	DatabaseSSLMode         = "disable"

	// ContextUserID is the echo context key the auth middleware stores the
	// authenticated user ID under.
	ContextUserID = "user_id"

	// RedisKeyLocation prefixes the per-user cached device location.
	RedisKeyLocation = "location:"

	// TaskNotificationDeliver is the asynq task type for notification
	// delivery hand-off.
	TaskNotificationDeliver = "notification:deliver"

	// ConfirmationAttempts caps the post-write confirmation polls.
	ConfirmationAttempts = 10

	MetersPerMile = 1609.34
)
