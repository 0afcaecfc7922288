package constants

const (
	// Session and context keys
	SessionCookieName  = "todo_session"
	ContextKeyUserID   = "user_id"
	ContextKeyIdentity = "identity"

	// Auth
	MinPasswordLength = 8

	// Pagination
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Todo priorities
	MinPriority         = 1
	MaxPriority         = 5
	DefaultPriority     = 3
	HighPriorityMinimum = 4
	UrgentPriority      = 5

	// Privacy labels used by exports
	RedactedContent = "[PRIVATE]"
	PrivacyPersonal = "Personal"
	PrivacyTeam     = "Team"

	// AI
	MaxAIGeneratedTodos = 20
)
