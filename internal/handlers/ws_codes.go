// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the match socket.
const (
	BadSubprotocolError   = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError = 3001 // Handshake token missing, invalid or expired.
)
