package event

import "time"

const DefaultSecretProvisionedSubject string = "otp.secret.provisioned"

// SecretProvisionedMessage never carries the secret itself.
type SecretProvisionedMessage struct {
	EventID    string    `json:"event_id"`
	Username   string    `json:"username"`
	Issuer     string    `json:"issuer"`
	Generated  bool      `json:"generated"`
	OccurredAt time.Time `json:"occurred_at"`
}
