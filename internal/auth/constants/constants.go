package constants

const (
	// TokenType for Bearer authentication
	TokenType = "Bearer"

	// AuthHeaderName is the name of the Authorization header
	AuthHeaderName = "Authorization"

	// AuthHeaderPrefix is the prefix for the Authorization header value
	AuthHeaderPrefix = "Bearer "
)

// Signed cookie names.
const (
	SessionCookie     = "spotify_user"
	NewPlaylistCookie = "new_playlist"
	ValenceCookie     = "valence"
)

// Routes owned by the auth service.
const (
	LoginPath  = "/auth/login"
	LogoutPath = "/auth/logout"
	FailedPath = "/auth/failed"
	HomePath   = "/"
)
