package mqtt

import (
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dvla-io/dvla/util"
	"github.com/dvla-io/dvla/util/request"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// ClientID created unique mqtt client id
func ClientID() string {
	return fmt.Sprintf("dvla-%s", uuid.New().String()[:8])
}

// Config is the public configuration
type Config struct {
	Broker   string
	User     string
	Password string
	ClientID string
	Insecure bool
	Topic    string
	// Discovery is the Home Assistant discovery prefix, empty disables discovery
	Discovery string
}

// RootTopic returns the configured root topic or default
func (c Config) RootTopic() string {
	if topic := strings.TrimRight(c.Topic, "/"); topic != "" {
		return topic
	}
	return "dvla"
}

// Client encapsulates mqtt publish/subscribe functions
type Client struct {
	mux      sync.Mutex
	log      *util.Logger
	Client   paho.Client
	broker   string
	status   string
	Qos      byte
	listener map[string][]func(string)
}

const (
	publishTimeout = 2 * time.Second

	// AvailabilityOnline is published on the availability topic while connected
	AvailabilityOnline = "online"
	// AvailabilityOffline is the last will published on disconnect
	AvailabilityOffline = "offline"
)

// NewClient creates new Mqtt publisher
func NewClient(log *util.Logger, broker, user, password, clientID string, qos byte, insecure bool, statusTopic string) (*Client, error) {
	broker = util.DefaultPort(broker, 1883)
	log.INFO.Printf("connecting %s at %s", clientID, broker)

	mc := &Client{
		log:      log,
		broker:   broker,
		status:   statusTopic,
		Qos:      qos,
		listener: make(map[string][]func(string)),
	}

	options := paho.NewClientOptions()
	options.AddBroker(broker)
	options.SetUsername(user)
	options.SetPassword(password)
	options.SetClientID(clientID)
	options.SetCleanSession(true)
	options.SetAutoReconnect(true)
	options.SetOnConnectHandler(mc.ConnectionHandler)
	options.SetConnectionLostHandler(mc.ConnectionLostHandler)
	options.SetConnectTimeout(request.Timeout)

	if statusTopic != "" {
		options.SetWill(statusTopic, AvailabilityOffline, qos, true)
	}

	if insecure {
		options.SetTLSConfig(&tls.Config{InsecureSkipVerify: true})
	}

	client := paho.NewClient(options)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("error connecting: %w", token.Error())
	}

	mc.Client = client

	return mc, nil
}

// ConnectionLostHandler logs cause of connection loss as warning
func (m *Client) ConnectionLostHandler(client paho.Client, reason error) {
	m.log.WARN.Printf("%s connection lost: %v", m.broker, reason.Error())
}

// ConnectionHandler publishes the online status and restores listeners
func (m *Client) ConnectionHandler(client paho.Client) {
	m.log.DEBUG.Printf("%s connected", m.broker)

	// the broker may still hold the retained last will from a lost connection
	if m.status != "" {
		go func() {
			token := client.Publish(m.status, m.Qos, true, AvailabilityOnline)
			if !token.WaitTimeout(publishTimeout) {
				m.log.WARN.Printf("publish %s: timeout", m.status)
			} else if err := token.Error(); err != nil {
				m.log.WARN.Printf("publish %s: %v", m.status, err)
			}
		}()
	}

	m.mux.Lock()
	defer m.mux.Unlock()

	for topic, l := range m.listener {
		m.log.TRACE.Printf("%s subscribe %s", m.broker, topic)
		go m.listen(topic, l)
	}
}

// Publish synchronously publishes payload using client qos
func (m *Client) Publish(topic string, retained bool, payload interface{}) error {
	m.log.TRACE.Printf("send %s: '%v'", topic, payload)
	token := m.Client.Publish(topic, m.Qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", topic)
	}
	return token.Error()
}

// Listen validates uniqueness and registers and attaches listener
func (m *Client) Listen(topic string, callback func(string)) error {
	m.mux.Lock()
	m.listener[topic] = append(m.listener[topic], callback)
	l := m.listener[topic]
	m.mux.Unlock()

	return m.listen(topic, l)
}

// listen attaches listener to topic
func (m *Client) listen(topic string, callbacks []func(string)) error {
	handler := func(c paho.Client, msg paho.Message) {
		payload := string(msg.Payload())
		m.log.TRACE.Printf("recv %s: '%v'", topic, payload)
		if len(payload) > 0 {
			for _, cb := range callbacks {
				cb(payload)
			}
		}
	}

	token := m.Client.Subscribe(topic, m.Qos, handler)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("subscribe %s: timeout", topic)
	}
	return token.Error()
}

// Close publishes the offline status and disconnects
func (m *Client) Close() {
	if m.status != "" {
		if err := m.Publish(m.status, true, AvailabilityOffline); err != nil {
			m.log.WARN.Println(err)
		}
	}
	m.Client.Disconnect(uint(publishTimeout.Milliseconds()))
}
