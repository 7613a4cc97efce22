package types

type contextKey string

// UsernameKey holds the authenticated username in a request context.
const UsernameKey contextKey = "username"
