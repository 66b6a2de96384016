package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const TypeMemberDeleted = "member.deleted"

// MemberEvent is the payload written to the member topic.
type MemberEvent struct {
	Type       string    `json:"type"`
	MemberID   int       `json:"memberId"`
	OccurredAt time.Time `json:"occurredAt"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher announces member lifecycle events, keyed by member id.
type KafkaPublisher struct {
	w   messageWriter
	now func() time.Time
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           50 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		now: time.Now,
	}
}

func (p *KafkaPublisher) PublishMemberDeleted(ctx context.Context, memberID int) error {
	return p.publish(ctx, MemberEvent{Type: TypeMemberDeleted, MemberID: memberID, OccurredAt: p.now().UTC()})
}

func (p *KafkaPublisher) publish(ctx context.Context, event MemberEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "encode member event")
	}
	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.Itoa(event.MemberID)),
		Value: value,
		Time:  event.OccurredAt,
	})
	return errors.Wrapf(err, "publish %s", event.Type)
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

// LogPublisher only logs events. Used when no broker is configured.
type LogPublisher struct {
	log logrus.FieldLogger
}

func NewLogPublisher(logger logrus.FieldLogger) *LogPublisher {
	return &LogPublisher{log: logger.WithField("component", "events")}
}

func (p *LogPublisher) PublishMemberDeleted(_ context.Context, memberID int) error {
	p.log.WithFields(logrus.Fields{"type": TypeMemberDeleted, "member_id": memberID}).Info("event")
	return nil
}
