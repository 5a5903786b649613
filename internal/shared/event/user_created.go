package event

import "time"

const DefaultUserCreatedSubject string = "otp.user.created"

type UserCreatedMessage struct {
	EventID    string    `json:"event_id"`
	Username   string    `json:"username"`
	IsAdmin    bool      `json:"is_admin"`
	OccurredAt time.Time `json:"occurred_at"`
}
