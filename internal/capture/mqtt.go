package capture

import (
	"context"
	"fmt"
	"strings"
	"time"
	"weightsync/internal/providers"
	"weightsync/internal/structures"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	json "github.com/goccy/go-json"
)

const (
	disconnectQuiesce = 250
	connectWait       = 5 * time.Second
)

// ScalePayload is what a scale publishes on scale/<deviceId>/weight.
type ScalePayload struct {
	UserID       string   `json:"userId"`
	Weight       float64  `json:"weight"`
	Notes        string   `json:"notes"`
	BatteryLevel *float64 `json:"batteryLevel"`
}

// Subscriber feeds measurements published by scales over MQTT into the
// capture service.
type Subscriber struct {
	conf    *structures.Config
	service ServiceInterface
	cache   providers.CacheProviderInterface
	logger  providers.Logger
	client  mqtt.Client
}

func NewSubscriber(conf *structures.Config, service ServiceInterface, cache providers.CacheProviderInterface, logger providers.Logger) *Subscriber {
	return &Subscriber{conf: conf, service: service, cache: cache, logger: logger}
}

// Start connects and subscribes. It does nothing when MQTT is disabled.
func (s *Subscriber) Start() error {
	if !s.conf.MQTT.Enabled {
		return nil
	}

	o := mqtt.NewClientOptions()
	o.AddBroker(s.conf.MQTT.Broker)
	o.SetClientID(s.conf.MQTT.ClientID)
	o.SetConnectRetry(true)
	o.SetConnectRetryInterval(2 * time.Second)
	o.SetAutoReconnect(true)
	o.SetOnConnectHandler(func(c mqtt.Client) {
		// subscriptions are lost on reconnect with a clean session
		token := c.Subscribe(s.conf.MQTT.Topic, s.conf.MQTT.QoS, s.handle)
		if token.Wait() && token.Error() != nil {
			s.logger.Errorf(providers.TypeCapture, "mqtt subscribe %s failed: %v", s.conf.MQTT.Topic, token.Error())
			return
		}
		s.logger.Infof(providers.TypeCapture, "mqtt subscribed to %s", s.conf.MQTT.Topic)
	})
	o.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.logger.Warnf(providers.TypeCapture, "mqtt connection lost: %v", err)
	})

	s.client = mqtt.NewClient(o)
	token := s.client.Connect()
	// with connect retry the token only completes once the broker answers
	if !token.WaitTimeout(connectWait) {
		s.logger.Warnf(providers.TypeCapture, "mqtt broker %s not reachable yet, retrying in background", s.conf.MQTT.Broker)
		return nil
	}
	if token.Error() != nil {
		return fmt.Errorf("mqtt connect %s: %w", s.conf.MQTT.Broker, token.Error())
	}
	return nil
}

func (s *Subscriber) Stop() {
	if s.client != nil {
		s.client.Disconnect(disconnectQuiesce)
		s.client = nil
	}
}

func (s *Subscriber) handle(_ mqtt.Client, msg mqtt.Message) {
	if err := s.HandlePayload(context.Background(), msg.Topic(), msg.Payload()); err != nil {
		s.logger.Warnf(providers.TypeCapture, "mqtt message on %s dropped: %v", msg.Topic(), err)
	}
}

func (s *Subscriber) HandlePayload(ctx context.Context, topic string, payload []byte) error {
	var p ScalePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	_, err := s.service.Capture(ctx, Input{
		UserID:       p.UserID,
		Weight:       p.Weight,
		Notes:        p.Notes,
		DeviceID:     deviceFromTopic(topic),
		BatteryLevel: p.BatteryLevel,
	})
	if err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}

// deviceFromTopic returns the second topic level, e.g. "kitchen" for
// scale/kitchen/weight.
func deviceFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
