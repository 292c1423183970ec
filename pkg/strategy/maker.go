package strategy

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"quotebot/pkg/exchange"
)

// RestingOrder is one live order this bot currently has on the exchange.
type RestingOrder struct {
	Ticker string        `json:"ticker"`
	Side   exchange.Side `json:"side"`
	Size   int64         `json:"size"`
	Price  float64       `json:"price"`
}

// MarketMaker quotes both sides of every configured instrument and tracks
// the resulting ledger: open resting orders keyed by id, and net position
// per ticker.
//
// The harness drives it strictly sequentially: SetStartID once before the
// first turn, then alternating Refresh and OnTrades calls, never
// overlapping. That sequencing is a documented precondition of this type;
// the mutex exists so the ledger stays consistent if the component is ever
// reused under a concurrent driver, it is not a license to call
// concurrently.
type MarketMaker struct {
	mu sync.Mutex

	name        string
	instruments []exchange.Instrument
	params      Params
	log         *zap.SugaredLogger

	nextID   int64
	turn     int64
	open     map[int64]RestingOrder
	position map[string]int64
}

// NewMarketMaker builds a strategy instance for the given instruments.
// A nil logger disables logging.
func NewMarketMaker(name string, instruments []exchange.Instrument, p Params, log *zap.SugaredLogger) *MarketMaker {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	m := &MarketMaker{
		name:        name,
		instruments: instruments,
		params:      p,
		log:         log,
		open:        make(map[int64]RestingOrder),
		position:    make(map[string]int64),
	}
	for _, inst := range instruments {
		m.position[inst.Ticker] = 0
	}
	return m
}

// Name is the identity the harness matches trades against.
func (m *MarketMaker) Name() string { return m.name }

// SetStartID seeds the order-id counter. The harness calls this exactly
// once per session, before the first Refresh.
func (m *MarketMaker) SetStartID(idx int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID = idx
	m.log.Infow("start_id_set", "idx", idx)
}

// Refresh replaces the full quote set for the current turn. It emits a
// REMOVE for every order still open (cancels first, ascending id, so the
// batch is deterministic), then one buy and one sell per instrument in
// construction order, recording each new order under its freshly assigned
// id. There is no diffing against the previous quotes: replacement is
// unconditional.
func (m *MarketMaker) Refresh(book exchange.Book) []exchange.Msg {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := make([]exchange.Msg, 0, len(m.open)+2*len(m.instruments))

	cancelIDs := make([]int64, 0, len(m.open))
	for id := range m.open {
		cancelIDs = append(cancelIDs, id)
	}
	sort.Slice(cancelIDs, func(i, j int) bool { return cancelIDs[i] < cancelIDs[j] })
	for _, id := range cancelIDs {
		msgs = append(msgs, exchange.NewRemoveMsg(id))
		delete(m.open, id)
	}

	for _, inst := range m.instruments {
		if m.params.Disabled[inst.Ticker] {
			continue
		}
		q := ComputeQuote(book[inst.Ticker], inst, m.position[inst.Ticker], m.params)

		msgs = append(msgs, exchange.NewOrderMsg(m.place(inst.Ticker, q.Size, q.BuyPrice, exchange.Buy)))
		msgs = append(msgs, exchange.NewOrderMsg(m.place(inst.Ticker, q.Size, q.SellPrice, exchange.Sell)))

		m.log.Debugw("quoted",
			"ticker", inst.Ticker,
			"buy", q.BuyPrice,
			"sell", q.SellPrice,
			"size", q.Size,
			"position", m.position[inst.Ticker],
		)
	}

	m.turn++
	return msgs
}

// place assigns the next order id, records the order as open and returns
// the wire payload. Caller holds the mutex.
func (m *MarketMaker) place(ticker string, size int64, price float64, dir exchange.Side) exchange.Order {
	id := m.nextID
	m.nextID++
	m.open[id] = RestingOrder{Ticker: ticker, Side: dir, Size: size, Price: price}
	return exchange.Order{
		Ticker:    ticker,
		Price:     price,
		Size:      size,
		OrderID:   id,
		Direction: dir,
		BotName:   m.name,
	}
}

// OnTrades settles the turn's executions into the ledger. When this bot was
// the aggressor the position moves with the aggressive direction; when it
// was the resting counterparty it moves the opposite way (the aggressor
// bought means we sold). Both branches apply independently, so a self-trade
// nets out. Trades referencing ids we no longer track are ignored.
func (m *MarketMaker) OnTrades(trades []exchange.Trade) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range trades {
		if t.AggBot == m.name {
			if t.AggDir == exchange.Buy {
				m.position[t.Ticker] += t.Size
			} else {
				m.position[t.Ticker] -= t.Size
			}
			delete(m.open, t.AggOrderID)
			m.log.Debugw("fill_aggressor",
				"ticker", t.Ticker, "dir", t.AggDir, "size", t.Size, "position", m.position[t.Ticker])
		}
		if t.RestBot == m.name {
			if t.AggDir == exchange.Buy {
				m.position[t.Ticker] -= t.Size
			} else {
				m.position[t.Ticker] += t.Size
			}
			delete(m.open, t.RestOrderID)
			m.log.Debugw("fill_resting",
				"ticker", t.Ticker, "aggDir", t.AggDir, "size", t.Size, "position", m.position[t.Ticker])
		}
	}
}

// OpenOrders returns a copy of the open resting-order set.
func (m *MarketMaker) OpenOrders() map[int64]RestingOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]RestingOrder, len(m.open))
	for id, o := range m.open {
		out[id] = o
	}
	return out
}

// Positions returns a copy of the per-ticker net positions.
func (m *MarketMaker) Positions() map[string]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.position))
	for t, p := range m.position {
		out[t] = p
	}
	return out
}

// Stats reports the completed turn count and the next order id.
func (m *MarketMaker) Stats() (turns, nextID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turn, m.nextID
}

// Instruments returns the instrument set this strategy quotes.
func (m *MarketMaker) Instruments() []exchange.Instrument {
	return m.instruments
}
