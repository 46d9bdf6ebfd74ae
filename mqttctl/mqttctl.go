// Package mqttctl exposes an mt9d115 session over MQTT.
//
// Requests arrive on three topics under a prefix:
//
//	<prefix>/set_mode    {"width":640,"height":480}
//	<prefix>/set_effect  {"item":"brightness","value":1}
//	<prefix>/get_status  (payload ignored)
//
// Every request is answered on <prefix>/result:
//
//	{"op":"set_mode","ok":false,"error":"mt9d115: invalid resolution: 320x240"}
package mqttctl

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"periph.io/x/devices/v3/mt9d115"
)

// Operation names, also the topic suffixes.
const (
	OpSetMode   = "set_mode"
	OpSetEffect = "set_effect"
	OpGetStatus = "get_status"

	resultTopic = "result"
)

// ErrUnknownOp is returned for a topic outside the handled operations.
var ErrUnknownOp = errors.New("mqttctl: unknown operation")

// Controller is the part of *mt9d115.Session the server drives.
type Controller interface {
	SetMode(w, h int) error
	SetEffect(item mt9d115.Item, value int) error
	Status() error
}

var _ Controller = (*mt9d115.Session)(nil)

// ModeRequest is the set_mode payload.
type ModeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// EffectRequest is the set_effect payload. Item is one of effect, wb,
// brightness or scene.
type EffectRequest struct {
	Item  string `json:"item"`
	Value int    `json:"value"`
}

// Reply is published on the result topic after each request.
type Reply struct {
	Op    string `json:"op"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Server routes MQTT requests to a Controller.
type Server struct {
	client  mqtt.Client
	ctl     Controller
	prefix  string
	qos     byte
	timeout time.Duration
	log     *log.Logger
}

// New returns a Server for ctl. client must be connected before Start.
// logger can be nil to use log.Default().
func New(client mqtt.Client, ctl Controller, prefix string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		client:  client,
		ctl:     ctl,
		prefix:  strings.TrimSuffix(prefix, "/"),
		qos:     1,
		timeout: 5 * time.Second,
		log:     logger,
	}
}

func (s *Server) topic(op string) string {
	return s.prefix + "/" + op
}

func (s *Server) filters() map[string]byte {
	return map[string]byte{
		s.topic(OpSetMode):   s.qos,
		s.topic(OpSetEffect): s.qos,
		s.topic(OpGetStatus): s.qos,
	}
}

// Start subscribes to the request topics.
func (s *Server) Start() error {
	t := s.client.SubscribeMultiple(s.filters(), s.onMessage)
	if err := wait(t, s.timeout); err != nil {
		return fmt.Errorf("mqttctl: subscribe %s/#: %w", s.prefix, err)
	}
	s.log.Printf("mqttctl: listening on %s", s.prefix)
	return nil
}

// Stop unsubscribes from the request topics.
func (s *Server) Stop() error {
	topics := make([]string, 0, 3)
	for t := range s.filters() {
		topics = append(topics, t)
	}
	if err := wait(s.client.Unsubscribe(topics...), s.timeout); err != nil {
		return fmt.Errorf("mqttctl: unsubscribe: %w", err)
	}
	return nil
}

func (s *Server) onMessage(_ mqtt.Client, msg mqtt.Message) {
	r := s.Handle(msg.Topic(), msg.Payload())
	if !r.OK {
		s.log.Printf("mqttctl: %s failed: %s", r.Op, r.Error)
	}
	b, err := json.Marshal(r)
	if err != nil {
		s.log.Printf("mqttctl: encode reply: %v", err)
		return
	}
	if err := wait(s.client.Publish(s.topic(resultTopic), s.qos, false, b), s.timeout); err != nil {
		s.log.Printf("mqttctl: publish reply: %v", err)
	}
}

// Handle runs the request on topic and returns its reply.
func (s *Server) Handle(topic string, payload []byte) Reply {
	op := strings.TrimPrefix(topic, s.prefix+"/")
	r := Reply{Op: op}
	if err := s.dispatch(op, payload); err != nil {
		r.Error = err.Error()
		return r
	}
	r.OK = true
	return r
}

func (s *Server) dispatch(op string, payload []byte) error {
	switch op {
	case OpSetMode:
		var req ModeRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("mqttctl: bad %s request: %w", op, err)
		}
		return s.ctl.SetMode(req.Width, req.Height)
	case OpSetEffect:
		var req EffectRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("mqttctl: bad %s request: %w", op, err)
		}
		item, err := mt9d115.ParseItem(req.Item)
		if err != nil {
			return err
		}
		return s.ctl.SetEffect(item, req.Value)
	case OpGetStatus:
		return s.ctl.Status()
	}
	return fmt.Errorf("%w: %q", ErrUnknownOp, op)
}

func wait(t mqtt.Token, d time.Duration) error {
	if !t.WaitTimeout(d) {
		return errors.New("timed out")
	}
	return t.Error()
}
