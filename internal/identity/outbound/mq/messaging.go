package mq

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/shandysiswandi/otpservice/internal/identity/usecase"
	"github.com/shandysiswandi/otpservice/internal/pkg/instrument"
	"github.com/shandysiswandi/otpservice/internal/pkg/messaging"
	"github.com/shandysiswandi/otpservice/internal/pkg/uid"
	"github.com/shandysiswandi/otpservice/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyOfCorrelationID string = "cID"

// Subjects names the destinations events are published to. Empty fields use
// the defaults from the event package.
type Subjects struct {
	UserCreated       string
	SecretProvisioned string
}

type Messaging struct {
	client   messaging.Publisher
	ids      uid.NumberID
	subjects Subjects
	ins      instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ids uid.NumberID, subjects Subjects, ins instrument.Instrumentation) *Messaging {
	if subjects.UserCreated == "" {
		subjects.UserCreated = event.DefaultUserCreatedSubject
	}
	if subjects.SecretProvisioned == "" {
		subjects.SecretProvisioned = event.DefaultSecretProvisionedSubject
	}

	return &Messaging{client: client, ids: ids, subjects: subjects, ins: ins}
}

func (m *Messaging) PublishUserCreated(ctx context.Context, msg usecase.UserCreatedEvent) error {
	ctx, span := m.ins.Tracer("identity.outbound.mq").Start(ctx, "PublishUserCreated")
	defer span.End()

	return m.publish(ctx, span, m.subjects.UserCreated, msg.Username, event.UserCreatedMessage{
		EventID:    m.eventID(),
		Username:   msg.Username,
		IsAdmin:    msg.IsAdmin,
		OccurredAt: msg.OccurredAt.UTC(),
	})
}

func (m *Messaging) PublishSecretProvisioned(ctx context.Context, msg usecase.SecretProvisionedEvent) error {
	ctx, span := m.ins.Tracer("identity.outbound.mq").Start(ctx, "PublishSecretProvisioned")
	defer span.End()

	return m.publish(ctx, span, m.subjects.SecretProvisioned, msg.Username, event.SecretProvisionedMessage{
		EventID:    m.eventID(),
		Username:   msg.Username,
		Issuer:     msg.Issuer,
		Generated:  msg.Generated,
		OccurredAt: msg.OccurredAt.UTC(),
	})
}

func (m *Messaging) eventID() string {
	return strconv.FormatInt(m.ids.Generate(), 10)
}

func (m *Messaging) publish(ctx context.Context, span trace.Span, subject, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	headers := map[string]string{}
	if cID := instrument.GetCorrelationID(ctx); cID != "" {
		headers[keyOfCorrelationID] = cID
	}

	if _, err := m.client.Publish(ctx, subject, messaging.Message{
		Key:     []byte(key),
		Body:    body,
		Headers: headers,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
