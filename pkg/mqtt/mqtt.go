// Package mqtt connects the bot to the MQTT broker. Cogs publish events
// under cogs/events/ and answer requests on cogs/request/<topic>, replying
// on cogs/response/<topic>/<correlationId>.
package mqtt

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	EventPrefix    = "cogs/events/"
	RequestPrefix  = "cogs/request/"
	ResponsePrefix = "cogs/response/"
)

const (
	ErrTimeout      = errors.Sentinel("la petición MQTT ha expirado")
	ErrDisconnected = errors.Sentinel("el cliente MQTT no está conectado")
)

// MqttRequest represents an MQTT request message
type MqttRequest struct {
	CorrelationID string      `json:"correlationId"`
	Payload       interface{} `json:"payload,omitempty"`
}

// MqttResponse represents an MQTT response message
type MqttResponse struct {
	CorrelationID string      `json:"correlationId"`
	Data          interface{} `json:"data"`
	Error         string      `json:"error,omitempty"`
}

// RequestHandler answers a request. The payload always carries "_topic".
type RequestHandler func(payload map[string]interface{}) (interface{}, error)

// MqttCommunicator handles MQTT communication
type MqttCommunicator struct {
	client   mqtt.Client
	clientID string

	mu       sync.RWMutex
	handlers map[string]RequestHandler
}

var (
	communicator *MqttCommunicator
	once         sync.Once
)

// Init initializes the global MQTT communicator
func Init(host, port, username, password, clientID string) *MqttCommunicator {
	once.Do(func() {
		communicator = NewMqttCommunicator(host, port, username, password, clientID)
	})
	return communicator
}

// Get returns the global MQTT communicator
func Get() *MqttCommunicator {
	return communicator
}

// NewMqttCommunicator connects to tcp://host:port. Request handlers are
// subscribed again after every reconnect.
func NewMqttCommunicator(host, port, username, password, clientID string) *MqttCommunicator {
	mc := &MqttCommunicator{
		clientID: clientID,
		handlers: make(map[string]RequestHandler),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%s", host, port)).
		SetClientID(fmt.Sprintf("%s_%s", clientID, uuid.New().String())).
		SetUsername(username).
		SetPassword(password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(mqtt.Client) {
			logger.Success(fmt.Sprintf("Conectado al broker MQTT como %s", clientID), "MQTT")
			mc.resubscribe()
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Error(fmt.Sprintf("Conexión MQTT perdida: %v", err), "MQTT")
		})

	mc.client = mqtt.NewClient(opts)
	if token := mc.client.Connect(); token.Wait() && token.Error() != nil {
		logger.Error(fmt.Sprintf("Error de conexión MQTT: %v", token.Error()), "MQTT")
	}
	return mc
}

// Destroy closes the MQTT connection
func (mc *MqttCommunicator) Destroy() {
	if !mc.IsConnected() {
		logger.Warn("El cliente MQTT no estaba conectado, no se necesita cerrar.", "MQTT")
		return
	}
	mc.client.Disconnect(250)
	logger.System("Conexión MQTT cerrada exitosamente.", "MQTT")
}

// IsConnected returns true if connected to the broker
func (mc *MqttCommunicator) IsConnected() bool {
	return mc.client != nil && mc.client.IsConnected()
}

// Publish sends payload as JSON and waits for the broker
func (mc *MqttCommunicator) Publish(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.WrapIf(err, "serializar payload")
	}
	token := mc.client.Publish(topic, 0, false, data)
	token.Wait()
	return errors.WrapIfWithDetails(token.Error(), "publicar", "topic", topic)
}

// PublishEvent sends payload under the event prefix without waiting for the broker.
// Events are dropped while disconnected.
func (mc *MqttCommunicator) PublishEvent(topic string, payload interface{}) {
	if !mc.IsConnected() {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Warn(fmt.Sprintf("Evento MQTT %s no serializable: %v", topic, err), "MQTT")
		return
	}
	mc.client.Publish(EventPrefix+topic, 0, false, data)
}

func responseTopic(topic, correlationID string) string {
	return ResponsePrefix + topic + "/" + correlationID
}

// Request publishes payload on topic and waits for the reply until ctx ends
func (mc *MqttCommunicator) Request(ctx context.Context, topic string, payload interface{}) (interface{}, error) {
	if !mc.IsConnected() {
		return nil, ErrDisconnected
	}
	correlationID := uuid.New().String()
	replyTopic := responseTopic(topic, correlationID)
	replies := make(chan MqttResponse, 1)

	token := mc.client.Subscribe(replyTopic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var resp MqttResponse
		if err := json.Unmarshal(msg.Payload(), &resp); err != nil {
			resp = MqttResponse{CorrelationID: correlationID, Error: "respuesta inválida: " + err.Error()}
		}
		if resp.CorrelationID != correlationID {
			return
		}
		select {
		case replies <- resp:
		default:
		}
	})
	if token.Wait() && token.Error() != nil {
		return nil, errors.WrapIf(token.Error(), "suscribir respuesta")
	}
	defer mc.client.Unsubscribe(replyTopic)

	if err := mc.Publish(RequestPrefix+topic, MqttRequest{CorrelationID: correlationID, Payload: payload}); err != nil {
		return nil, err
	}

	select {
	case resp := <-replies:
		if resp.Error != "" {
			return nil, errors.New(resp.Error)
		}
		return resp.Data, nil
	case <-ctx.Done():
		return nil, errors.WithDetails(ErrTimeout, "topic", topic)
	}
}

// On answers requests sent to topic
func (mc *MqttCommunicator) On(topic string, handler RequestHandler) {
	mc.mu.Lock()
	mc.handlers[topic] = handler
	mc.mu.Unlock()

	if mc.IsConnected() {
		mc.subscribe(topic, handler)
	}
}

func (mc *MqttCommunicator) resubscribe() {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	for topic, h := range mc.handlers {
		mc.subscribe(topic, h)
	}
}

func (mc *MqttCommunicator) subscribe(topic string, handler RequestHandler) {
	token := mc.client.Subscribe(RequestPrefix+topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		replyTopic, resp, err := Serve(handler, msg.Topic(), msg.Payload())
		if err != nil {
			logger.Error(fmt.Sprintf("Error parsing MQTT request: %v", err), "MQTT")
			return
		}
		if err := mc.Publish(replyTopic, resp); err != nil {
			logger.Warn(fmt.Sprintf("No se pudo responder en %s: %v", replyTopic, err), "MQTT")
		}
	})
	if token.Wait() && token.Error() != nil {
		logger.Error(fmt.Sprintf("Error subscribing to topic %s: %v", topic, token.Error()), "MQTT")
	}
}

// Serve decodes a raw request received on fullTopic, runs handler and
// returns the topic and body of the reply. A panicking handler becomes an error reply.
func Serve(handler RequestHandler, fullTopic string, raw []byte) (string, MqttResponse, error) {
	var req MqttRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return "", MqttResponse{}, errors.WrapIf(err, "petición MQTT inválida")
	}
	topic := strings.TrimPrefix(fullTopic, RequestPrefix)

	payload, ok := req.Payload.(map[string]interface{})
	if !ok {
		payload = make(map[string]interface{})
	}
	payload["_topic"] = topic

	resp := MqttResponse{CorrelationID: req.CorrelationID}
	data, err := safeCall(handler, payload)
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.Data = data
	}
	return responseTopic(topic, req.CorrelationID), resp, nil
}

func safeCall(handler RequestHandler, payload map[string]interface{}) (data interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic en el handler: %v", r)
		}
	}()
	return handler(payload)
}
