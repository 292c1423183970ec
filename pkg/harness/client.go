// Package harness connects the strategy to the external exchange simulator.
//
// The simulator owns the session: it greets the bot, seeds the order-id
// counter, then alternates book frames (answered with a message batch) and
// trade frames (no reply) until it ends the session. The whole exchange is
// serviced on a single goroutine, which is what upholds the strategy's
// strictly-sequential call contract.
package harness

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quotebot/pkg/exchange"
)

// Frame types sent by the simulator.
const (
	FrameHello  = "hello"
	FrameSetIdx = "set_idx"
	FrameBook   = "book"
	FrameTrades = "trades"
	FrameEnd    = "end"
)

// Frame is one inbound message from the simulator. Only the fields for the
// given Type are populated.
type Frame struct {
	Type   string           `json:"type"`
	Idx    int64            `json:"idx,omitempty"`
	Book   exchange.Book    `json:"book,omitempty"`
	Trades []exchange.Trade `json:"trades,omitempty"`
}

// Reply is one outbound message to the simulator.
type Reply struct {
	Type     string         `json:"type"`
	Name     string         `json:"name,omitempty"`
	Messages []exchange.Msg `json:"messages,omitempty"`
}

// Strategy is the surface the session loop drives. Calls are made one at a
// time from a single goroutine, in simulator order.
type Strategy interface {
	Name() string
	SetStartID(idx int64)
	Refresh(book exchange.Book) []exchange.Msg
	OnTrades(trades []exchange.Trade)
}

// Client dials the simulator and services one session.
type Client struct {
	url string
	log *zap.SugaredLogger
}

func NewClient(url string, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{url: url, log: log}
}

// Run connects to the simulator and processes frames until the session ends
// or ctx is cancelled. Returns nil on a clean "end" frame.
func (c *Client) Run(ctx context.Context, s Strategy) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial harness %s: %w", c.url, err)
	}
	defer conn.Close()

	// Unblock the read loop when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	c.log.Infow("session_start", "url", c.url, "bot", s.Name())

	for {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read frame: %w", err)
		}

		switch f.Type {
		case FrameHello:
			if err := conn.WriteJSON(Reply{Type: FrameHello, Name: s.Name()}); err != nil {
				return fmt.Errorf("write hello: %w", err)
			}

		case FrameSetIdx:
			s.SetStartID(f.Idx)

		case FrameBook:
			msgs := s.Refresh(f.Book)
			// Reply even when empty so the turn protocol stays in lockstep.
			if err := conn.WriteJSON(Reply{Type: "messages", Messages: msgs}); err != nil {
				return fmt.Errorf("write messages: %w", err)
			}

		case FrameTrades:
			s.OnTrades(f.Trades)

		case FrameEnd:
			c.log.Infow("session_end")
			return nil

		default:
			c.log.Debugw("unknown_frame", "type", f.Type)
		}
	}
}
