// internal/models/ack.go
package models

// Reason is the closed set of codes returned in acks.
type Reason string

const (
	ReasonAlreadyJoined     Reason = "ALREADY_JOINED"
	ReasonNotHost           Reason = "NOT_HOST"
	ReasonNotFull           Reason = "NOT_FULL"
	ReasonNotFound          Reason = "NOT_FOUND"
	ReasonFull              Reason = "FULL"
	ReasonStarted           Reason = "STARTED"
	ReasonBotMatch          Reason = "BOT_MATCH"
	ReasonWaitingForPlayers Reason = "WAITING_FOR_PLAYERS"
)

// AckError is a protocol failure reported to the requesting client only.
type AckError struct {
	Reason Reason
}

func (e *AckError) Error() string {
	return "request rejected: " + string(e.Reason)
}

var (
	ErrNotHost           = &AckError{Reason: ReasonNotHost}
	ErrNotFull           = &AckError{Reason: ReasonNotFull}
	ErrNotFound          = &AckError{Reason: ReasonNotFound}
	ErrFull              = &AckError{Reason: ReasonFull}
	ErrStarted           = &AckError{Reason: ReasonStarted}
	ErrBotMatch          = &AckError{Reason: ReasonBotMatch}
	ErrWaitingForPlayers = &AckError{Reason: ReasonWaitingForPlayers}
)
