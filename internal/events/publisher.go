package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/riyagarg17/CS520-Team5/internal/models"
)

// AppointmentEvent is emitted after every successful appointment mutation.
// Delivery is best-effort: a publish failure is logged and never surfaced to
// the caller, same contract as the notifier.
type AppointmentEvent struct {
	Type          string    `json:"type"` // scheduled | confirmed | cancelled | rescheduled
	AppointmentID string    `json:"appointment_id"`
	PatientEmail  string    `json:"patient_email"`
	DoctorEmail   string    `json:"doctor_email"`
	Date          string    `json:"appointment_date"`
	Time          string    `json:"appointment_time"`
	Status        string    `json:"status"`
	At            time.Time `json:"at"`
}

func NewAppointmentEvent(eventType string, appt models.Appointment) AppointmentEvent {
	return AppointmentEvent{
		Type:          eventType,
		AppointmentID: appt.AppointmentID,
		PatientEmail:  appt.PatientEmail,
		DoctorEmail:   appt.DoctorEmail,
		Date:          appt.Date,
		Time:          appt.Time,
		Status:        string(appt.Status),
		At:            time.Now(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev AppointmentEvent)
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.SugaredLogger
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.SugaredLogger) Publisher {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &kafkaPublisher{writer: w, logger: logger}
}

func (p *kafkaPublisher) Publish(ctx context.Context, ev AppointmentEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		p.logger.Errorw("marshal appointment event", "error", err)
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	msg := kafka.Message{Key: []byte(ev.AppointmentID), Value: b, Time: time.Now()}
	if err := p.writer.WriteMessages(pubCtx, msg); err != nil {
		p.logger.Warnw("publish appointment event", "type", ev.Type, "error", err)
	}
}

func (p *kafkaPublisher) Close() error { return p.writer.Close() }

// NoopPublisher is used when kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, AppointmentEvent) {}
func (NoopPublisher) Close() error                              { return nil }
