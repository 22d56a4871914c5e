package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/triplog/tracking-system/internal/core/domain"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// Config captures the broker connection settings.
type Config struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
}

// Publisher pushes derived positions to the MQTT broker for live map
// consumers. Messages are retained so a map opening mid-trip sees the
// current position immediately.
//
// Topic: triplog/trips/<trip_id>/position
type Publisher struct {
	client mqtt.Client
	log    zerolog.Logger
}

// Connect establishes the broker session.
func Connect(cfg Config, log zerolog.Logger) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Error().Err(err).Msg("mqtt connection lost")
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect: timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	log.Info().Str("broker", cfg.BrokerURL).Msg("connected to mqtt broker")
	return &Publisher{client: client, log: log}, nil
}

// PublishPosition sends one derived position, retained, at QoS 0.
func (p *Publisher) PublishPosition(_ context.Context, tripID string, pos domain.DerivedPosition) error {
	payload, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("publish position: %w", err)
	}

	topic := fmt.Sprintf("triplog/trips/%s/position", tripID)
	token := p.client.Publish(topic, 0, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish position: timeout")
	}
	return token.Error()
}

// Close disconnects from the broker, allowing in-flight messages a
// short grace period.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
