package common

const (
	// MaxJSONBody limits JSON request bodies.
	MaxJSONBody = 1 << 20
	// DefaultPageLimit is used when a listing omits limit.
	DefaultPageLimit = 20
	// MaxPageLimit caps listing page sizes.
	MaxPageLimit = 100
	// RetryAfterSeconds is advertised when the write buffer is saturated.
	RetryAfterSeconds = "1"
)
