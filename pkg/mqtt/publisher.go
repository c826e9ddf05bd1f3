// Package mqtt bridges the reporting event bus onto an MQTT broker
// (SPEC_FULL.md §4.12), publishing call and peer lifecycle events as
// JSON messages under a per-system topic tree, with the retain flag
// taken from Config.Retained.
package mqtt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/k9fne/fned/pkg/logger"
	"github.com/k9fne/fned/pkg/reporting"
)

// Config holds MQTT publisher configuration.
type Config struct {
	Enabled      bool
	Broker       string
	TopicPrefix  string
	ClientID     string
	Username     string
	Password     string
	QoS          byte
	Retained     bool
	ConnectTimeout time.Duration
}

// PeerConnectEvent represents a peer connection event.
type PeerConnectEvent struct {
	PeerID    uint32    `json:"peer_id"`
	System    string    `json:"system"`
	Timestamp time.Time `json:"timestamp"`
}

// PeerDisconnectEvent represents a peer disconnection event.
type PeerDisconnectEvent struct {
	PeerID    uint32    `json:"peer_id"`
	System    string    `json:"system"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// CallEvent mirrors one reporting-channel call event (router.Event's
// wire format) as a JSON payload.
type CallEvent struct {
	Type      string    `json:"type"`
	Subtype   string    `json:"subtype"`
	Proto     string    `json:"proto"`
	System    string    `json:"system"`
	StreamID  uint32    `json:"stream_id"`
	PeerID    uint32    `json:"peer_id"`
	RFSrc     uint32    `json:"rf_src"`
	Slot      int       `json:"slot"`
	DstID     uint32    `json:"dst_id"`
	Duration  float64   `json:"duration,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher bridges reporting.Bus events onto an MQTT broker.
type Publisher struct {
	config Config
	log    *logger.Logger
	client mqtt.Client
}

// New creates an MQTT publisher. The client is not connected until
// Start is called.
func New(config Config, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}
	return &Publisher{
		config: config,
		log:    log.WithComponent("mqtt"),
	}
}

// Start connects to the broker. It is a no-op if the publisher is
// disabled.
func (p *Publisher) Start() error {
	if !p.config.Enabled {
		p.log.Info("mqtt publisher disabled")
		return nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(p.config.Broker).
		SetClientID(p.config.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	if p.config.Username != "" {
		opts.SetUsername(p.config.Username)
		opts.SetPassword(p.config.Password)
	}

	timeout := p.config.ConnectTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	opts.SetConnectTimeout(timeout)

	p.client = mqtt.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt: connect timed out after %s", timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: connect failed: %w", err)
	}

	p.log.Info("mqtt publisher connected", logger.String("broker", p.config.Broker))
	return nil
}

// Stop disconnects the MQTT client.
func (p *Publisher) Stop() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

// RunBus subscribes to bus and publishes every call event as a JSON
// message until done fires.
func (p *Publisher) RunBus(bus *reporting.Bus, done <-chan struct{}) {
	if !p.config.Enabled {
		return
	}
	ch := bus.Subscribe(64)
	defer bus.Unsubscribe(ch)

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			p.publishCallEventText(e.Text)
		case <-done:
			return
		}
	}
}

func (p *Publisher) publishCallEventText(text string) {
	parts := strings.Split(text, ",")
	if len(parts) < 9 {
		return
	}
	num := func(s string) uint32 {
		v, _ := strconv.ParseUint(s, 10, 32)
		return uint32(v)
	}
	slot, _ := strconv.Atoi(parts[7])
	ev := CallEvent{
		Type:      parts[0],
		Subtype:   parts[1],
		Proto:     parts[2],
		System:    parts[3],
		StreamID:  num(parts[4]),
		PeerID:    num(parts[5]),
		RFSrc:     num(parts[6]),
		Slot:      slot,
		DstID:     num(parts[8]),
		Timestamp: time.Now(),
	}
	if len(parts) > 9 {
		ev.Duration, _ = strconv.ParseFloat(parts[9], 64)
	}
	topic := p.formatTopic(fmt.Sprintf("%s/call", parts[3]))
	p.publish(topic, ev)
}

// PublishPeerConnect publishes a peer connection event.
func (p *Publisher) PublishPeerConnect(event PeerConnectEvent) error {
	if !p.config.Enabled {
		return nil
	}
	return p.publish(p.formatTopic(fmt.Sprintf("%s/peer", event.System)), event)
}

// PublishPeerDisconnect publishes a peer disconnection event.
func (p *Publisher) PublishPeerDisconnect(event PeerDisconnectEvent) error {
	if !p.config.Enabled {
		return nil
	}
	return p.publish(p.formatTopic(fmt.Sprintf("%s/peer", event.System)), event)
}

func (p *Publisher) publish(topic string, event interface{}) error {
	payload, err := p.serializeEvent(event)
	if err != nil {
		p.log.Error("failed to serialize mqtt event", logger.String("topic", topic), logger.Error(err))
		return err
	}
	if p.client == nil || !p.client.IsConnected() {
		return nil
	}
	token := p.client.Publish(topic, p.config.QoS, p.config.Retained, payload)
	token.Wait()
	return token.Error()
}

func (p *Publisher) serializeEvent(event interface{}) ([]byte, error) {
	return json.Marshal(event)
}

func (p *Publisher) formatTopic(suffix string) string {
	prefix := strings.TrimSuffix(p.config.TopicPrefix, "/")
	if prefix == "" {
		return suffix
	}
	return fmt.Sprintf("%s/%s", prefix, suffix)
}
