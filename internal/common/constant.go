package common

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "jwt"

// Realtime event names pushed to websocket clients.
const (
	EventNewMessage     = "newMessage"
	EventGetOnlineUsers = "getOnlineUsers"
)
