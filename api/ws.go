package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fabfab/cvchat/chat"
	"github.com/fabfab/cvchat/history"
)

const (
	wsTypeSession = "session"
	wsTypeHistory = "history"
	wsTypeAsk     = "ask"
	wsTypeReset   = "reset"
	wsTypeReply   = "reply"
	wsTypeError   = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsInbound struct {
	Type        string   `json:"type"`
	Message     string   `json:"message,omitempty"`
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

type wsOutbound struct {
	Type           string            `json:"type"`
	Session        string            `json:"session,omitempty"`
	Messages       []history.Message `json:"messages,omitempty"`
	Reply          string            `json:"reply,omitempty"`
	Thinking       string            `json:"thinking,omitempty"`
	Kind           string            `json:"kind,omitempty"`
	Detail         string            `json:"detail,omitempty"`
	ProcessingTime *float64          `json:"processing_time,omitempty"`
}

// historyFrame always carries the messages key, even when empty.
type historyFrame struct {
	Type     string            `json:"type"`
	Messages []history.Message `json:"messages"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session")
	if _, err := uuid.Parse(session); err != nil {
		session = uuid.NewString()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()

	if err := conn.WriteJSON(wsOutbound{Type: wsTypeSession, Session: session}); err != nil {
		s.logger.Printf("websocket write session: %v", err)
		return
	}
	if err := s.sendHistory(ctx, conn, session); err != nil {
		s.logger.Printf("websocket write history: %v", err)
		return
	}

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Printf("websocket read: %v", err)
			}
			return
		}

		var werr error
		switch in.Type {
		case wsTypeAsk:
			werr = conn.WriteJSON(s.answer(ctx, session, in))
		case wsTypeReset:
			if err := s.history.Reset(ctx, session); err != nil {
				s.logger.Printf("reset history for %s: %v", session, err)
			}
			werr = conn.WriteJSON(historyFrame{Type: wsTypeHistory, Messages: []history.Message{}})
		default:
			werr = conn.WriteJSON(wsOutbound{
				Type:   wsTypeError,
				Kind:   string(chat.FailureInvalidRequest),
				Detail: fmt.Sprintf("unknown message type %q", in.Type),
			})
		}
		if werr != nil {
			s.logger.Printf("websocket write: %v", werr)
			return
		}
	}
}

// answer runs one question and records the turn when it succeeds.
func (s *Server) answer(ctx context.Context, session string, in wsInbound) wsOutbound {
	res := s.chat.Ask(ctx, chat.Request{
		Message:     in.Message,
		Model:       in.Model,
		Temperature: in.Temperature,
	})
	elapsed := res.ProcessingTime.Seconds()

	var failure *chat.Failure
	if errors.As(res.Err(), &failure) {
		return wsOutbound{
			Type:           wsTypeError,
			Kind:           string(failure.Kind),
			Detail:         failure.Message,
			ProcessingTime: &elapsed,
		}
	}

	if err := s.history.Append(ctx, session, history.Turn(in.Message, res.Reply)...); err != nil {
		s.logger.Printf("append history for %s: %v", session, err)
	}

	return wsOutbound{
		Type:           wsTypeReply,
		Reply:          res.Reply,
		Thinking:       res.Thinking,
		ProcessingTime: &elapsed,
	}
}

func (s *Server) sendHistory(ctx context.Context, conn *websocket.Conn, session string) error {
	msgs, err := s.history.List(ctx, session)
	if err != nil {
		s.logger.Printf("list history for %s: %v", session, err)
		msgs = nil
	}
	if msgs == nil {
		msgs = []history.Message{}
	}
	return conn.WriteJSON(historyFrame{Type: wsTypeHistory, Messages: msgs})
}
