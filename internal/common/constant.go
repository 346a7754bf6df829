package common

// AuthorizationHeaderName carries the bearer access token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "

// SyncTimeLayout is the wire format for every timestamp exchanged with clients.
// It matches JavaScript's Date.prototype.toISOString.
const SyncTimeLayout = "2006-01-02T15:04:05.000Z07:00"
