package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quiz-trainer/internal/app"
	"quiz-trainer/internal/domain"
)

// WSHandler serves one quiz session per WebSocket connection.
type WSHandler struct {
	service          *app.QuizService
	logger           *zap.Logger
	defaultTimeLimit int
	upgrader         websocket.Upgrader
}

// NewWSHandler wires the handler. defaultTimeLimit applies to exam loads that
// omit timeLimit.
func NewWSHandler(service *app.QuizService, logger *zap.Logger, defaultTimeLimit int) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service:          service,
		logger:           logger,
		defaultTimeLimit: defaultTimeLimit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type loadPayload struct {
	Quiz      json.RawMessage `json:"quiz"`
	Mode      domain.Mode     `json:"mode"`
	TimeLimit *int            `json:"timeLimit"`
}

type loadStoredPayload struct {
	QuizID    string      `json:"quizId"`
	Mode      domain.Mode `json:"mode"`
	TimeLimit *int        `json:"timeLimit"`
}

type generatePayload struct {
	MaterialText      string      `json:"materialText"`
	MaterialImages    []string    `json:"materialImages"`
	NumberOfQuestions int         `json:"numberOfQuestions"`
	Mode              domain.Mode `json:"mode"`
}

type selectPayload struct {
	Position *int `json:"position"`
}

type cardPayload struct {
	Direction string `json:"direction"`
}

type reviewPayload struct {
	Action string `json:"action"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type exportPayload struct {
	FileName string          `json:"fileName"`
	Data     json.RawMessage `json:"data"`
}

// connection owns the outbound queue of one socket.
type connection struct {
	send       chan outboundMessage
	writerDone chan struct{}
}

func (c *connection) push(msg outboundMessage) {
	select {
	case c.send <- msg:
	case <-c.writerDone:
	}
}

func (c *connection) fail(err error) {
	c.push(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
}

// ServeWS upgrades HTTP requests to websockets and drives a fresh session from
// the client's messages. The session is closed when the socket goes away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancelCtx := context.WithCancel(r.Context())
	defer cancelCtx()

	session := h.service.Open(ctx)
	defer h.service.Close(context.Background(), session.ID())
	log := h.logger.With(zap.String("session", session.ID()))

	notes, unsubscribe := session.Subscribe()
	defer unsubscribe()

	c := &connection{
		send:       make(chan outboundMessage, 16),
		writerDone: make(chan struct{}),
	}
	closeSignals := make(chan struct{})
	notesDone := make(chan struct{})
	var jobs sync.WaitGroup

	go func() {
		defer close(c.writerDone)
		for msg := range c.send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(notesDone)
		for {
			select {
			case note, ok := <-notes:
				if !ok {
					return
				}
				c.push(outboundMessage{Type: "notification", Payload: note})
				c.push(outboundMessage{Type: "state", Payload: session.Snapshot()})
			case <-closeSignals:
				return
			}
		}
	}()

	c.push(outboundMessage{Type: "state", Payload: session.Snapshot()})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if inbound.Type == "generate" {
			var payload generatePayload
			if err := decode(inbound.Payload, &payload); err != nil {
				c.fail(err)
				c.push(outboundMessage{Type: "state", Payload: session.Snapshot()})
				continue
			}
			jobs.Add(1)
			go func() {
				defer jobs.Done()
				err := session.Generate(ctx, domain.GenerationRequest{
					MaterialText:      payload.MaterialText,
					MaterialImages:    payload.MaterialImages,
					NumberOfQuestions: payload.NumberOfQuestions,
				}, modeOr(payload.Mode))
				// generation failures already reach the client as a notification
				var genErr *domain.GenerationError
				if err != nil && !errors.As(err, &genErr) {
					c.fail(err)
				}
				c.push(outboundMessage{Type: "state", Payload: session.Snapshot()})
			}()
			// the snapshot now shows the generating state
			c.push(outboundMessage{Type: "state", Payload: session.Snapshot()})
			continue
		}

		if err := h.dispatch(ctx, c, session, inbound); err != nil {
			c.fail(err)
		}
		c.push(outboundMessage{Type: "state", Payload: session.Snapshot()})
	}

	cancelCtx()
	jobs.Wait()
	close(closeSignals)
	<-notesDone
	close(c.send)
	<-c.writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, c *connection, session *app.Session, msg inboundMessage) error {
	switch msg.Type {
	case "load":
		var payload loadPayload
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		doc, err := domain.HandAuthored.Parse(payload.Quiz)
		if err != nil {
			return err
		}
		return session.Load(doc, modeOr(payload.Mode), h.timeLimit(payload.TimeLimit))
	case "loadStored":
		var payload loadStoredPayload
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		return h.service.LoadStored(ctx, session.ID(), payload.QuizID, modeOr(payload.Mode), h.timeLimit(payload.TimeLimit))
	case "select":
		var payload selectPayload
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		if payload.Position == nil {
			return fmt.Errorf("%w: missing position", domain.ErrOptionOutOfRange)
		}
		return session.Select(*payload.Position)
	case "submit":
		return session.Submit()
	case "pause":
		return session.Pause()
	case "resume":
		return session.Resume()
	case "card":
		var payload cardPayload
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		switch payload.Direction {
		case "next":
			return session.NextCard()
		case "previous":
			return session.PreviousCard()
		default:
			return fmt.Errorf("unknown card direction %q", payload.Direction)
		}
	case "review":
		var payload reviewPayload
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		switch payload.Action {
		case "next":
			return session.ReviewNext()
		case "previous":
			return session.ReviewPrevious()
		case "dismiss":
			return session.ReviewDismiss()
		default:
			return fmt.Errorf("unknown review action %q", payload.Action)
		}
	case "export":
		data, name, err := session.Export()
		if err != nil {
			return err
		}
		c.push(outboundMessage{Type: "export", Payload: exportPayload{FileName: name, Data: data}})
		return nil
	case "restart":
		return session.Restart()
	case "exitStudy":
		return session.ExitStudy()
	default:
		return errors.New("unsupported message type")
	}
}

func (h *WSHandler) timeLimit(requested *int) int {
	if requested == nil {
		return h.defaultTimeLimit
	}
	return *requested
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func modeOr(m domain.Mode) domain.Mode {
	if m == "" {
		return domain.ModeExam
	}
	return m
}
