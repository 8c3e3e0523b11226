package auth

// Known OAuth scopes accepted by the habit service.
const (
	ScopeHabitsWrite = "habits:write"
	ScopeHabitsRead  = "habits:read"
)
