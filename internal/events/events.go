// Package events publishes tenant events to subscribed clients.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Event kinds.
const (
	AssessmentCreated       = "assessment.created"
	AssessmentStatusChanged = "assessment.status_changed"
	EstimateSaved           = "estimate.saved"
	EstimateDeleted         = "estimate.deleted"
	InvoiceStatusChanged    = "invoice.status_changed"
	AppointmentBooked       = "appointment.booked"
	AppointmentUpdated      = "appointment.updated"
	ServiceCatalogChanged   = "service.catalog_changed"
	TenantUpdated           = "tenant.updated"
)

const topicPrefix = "autodetail/tenants/"

var ErrPublishTimeout = errors.New("publish timed out")

// Publisher delivers events to the clients of a tenant.
type Publisher interface {
	Publish(ctx context.Context, tenantID, kind string, payload interface{}) error
	Close()
}

// Envelope is the message body of every event.
type Envelope struct {
	Kind     string      `json:"kind"`
	TenantID string      `json:"tenant_id"`
	Payload  interface{} `json:"payload"`
	SentAt   time.Time   `json:"sent_at"`
}

// Topic is the MQTT topic of a tenant's events of one kind.
func Topic(tenantID, kind string) string {
	return topicPrefix + tenantID + "/" + kind
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, interface{}) error { return nil }
func (Nop) Close()                                                    {}

// MQTTPublisher publishes events at QoS 1.
type MQTTPublisher struct {
	client  mqtt.Client
	timeout time.Duration
}

// Connect dials the broker and returns a publisher.
func Connect(broker, clientID string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectTimeout(10 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost")
		}).
		SetOnConnectHandler(func(mqtt.Client) {
			log.WithField("broker", broker).Info("Connected to MQTT broker")
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connect to %s: %w", broker, ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", broker, err)
	}
	return NewMQTTPublisher(client), nil
}

// NewMQTTPublisher wraps a connected client
func NewMQTTPublisher(client mqtt.Client) *MQTTPublisher {
	return &MQTTPublisher{client: client, timeout: 5 * time.Second}
}

// Publish sends the event and waits for the broker acknowledgement.
func (p *MQTTPublisher) Publish(ctx context.Context, tenantID, kind string, payload interface{}) error {
	body, err := json.Marshal(Envelope{Kind: kind, TenantID: tenantID, Payload: payload, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	token := p.client.Publish(Topic(tenantID, kind), 1, false, body)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.timeout):
		return ErrPublishTimeout
	}
	return token.Error()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// PublishAsync publishes in the background; failures are only logged.
func PublishAsync(p Publisher, tenantID, kind string, payload interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.Publish(ctx, tenantID, kind, payload); err != nil {
			log.WithError(err).WithFields(log.Fields{"tenant_id": tenantID, "kind": kind}).Warn("Failed to publish event")
		}
	}()
}
