package handler

import (
	"time"

	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/ledger"
	"finance-dashboard/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	pongWait   = pingPeriod + 10*time.Second
)

// Event types pushed over the stream.
const (
	EventSession      = "session"
	EventTransactions = "transactions"
)

// EventMessage is one frame of the event stream.
type EventMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type transactionsPayload struct {
	Transactions []domain.Transaction `json:"transactions"`
	Balance      decimal.Decimal      `json:"balance"`
}

// EventsHandler 通过 websocket 推送会话和交易缓存的变化
type EventsHandler struct {
	Session  *session.Store
	Ledger   *ledger.Cache
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

func NewEventsHandler(store *session.Store, cache *ledger.Cache, logger zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		Session: store,
		Ledger:  cache,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// offer 只保留最新快照：通道满时丢弃旧的那一条
func offer(ch chan EventMessage, m EventMessage) {
	for {
		select {
		case ch <- m:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func txPayload(list []domain.Transaction) transactionsPayload {
	return transactionsPayload{Transactions: list, Balance: ledger.Balance(list)}
}

// Stream upgrades the request and sends a "session" and a "transactions"
// frame immediately, then again after every change.
func (h *EventsHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sessCh := make(chan EventMessage, 1)
	txCh := make(chan EventMessage, 1)

	stopSession := h.Session.Watch(func(st session.State) {
		offer(sessCh, EventMessage{Type: EventSession, Data: st})
	})
	defer stopSession()
	stopLedger := h.Ledger.Watch(func(list []domain.Transaction) {
		offer(txCh, EventMessage{Type: EventTransactions, Data: txPayload(list)})
	})
	defer stopLedger()

	offer(sessCh, EventMessage{Type: EventSession, Data: h.Session.State()})
	offer(txCh, EventMessage{Type: EventTransactions, Data: txPayload(h.Ledger.Snapshot())})

	// 读循环只用来发现连接关闭和处理 pong
	done := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	send := func(m EventMessage) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(m); err != nil {
			h.logger.Debug().Err(err).Msg("websocket write failed")
			return false
		}
		return true
	}

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case m := <-sessCh:
			if !send(m) {
				return
			}
		case m := <-txCh:
			if !send(m) {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
