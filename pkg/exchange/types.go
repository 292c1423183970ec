package exchange

// Side is the direction of an order or of an aggressive trade.
type Side string

const (
	Buy  Side = "Buy"
	Sell Side = "Sell"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Instrument is the static configuration for one tradable product,
// supplied by the harness at session setup and immutable afterwards.
type Instrument struct {
	Ticker   string  `json:"ticker"`
	PosLimit int64   `json:"posLimit"` // <= 0 means unbounded
	TickSize float64 `json:"tickSize"` // minimum price increment
}

// Unbounded reports whether the instrument carries no position limit.
// Zero and negative limits are treated as unbounded rather than errors.
func (i Instrument) Unbounded() bool { return i.PosLimit <= 0 }

// Rest is one resting level entry on a book side.
type Rest struct {
	Price float64 `json:"price"`
	Size  int64   `json:"size"`
}

// BookSide holds both sides of one instrument's book, best price first:
// bids descending, asks ascending.
type BookSide struct {
	Bids []Rest `json:"bids"`
	Asks []Rest `json:"asks"`
}

// Book maps ticker to the instrument's current resting orders. It is a
// read-only snapshot owned by the harness.
type Book map[string]BookSide

// Order is a new-order payload sent to the exchange.
type Order struct {
	Ticker    string  `json:"ticker"`
	Price     float64 `json:"price"`
	Size      int64   `json:"size"`
	OrderID   int64   `json:"orderId"`
	Direction Side    `json:"direction"`
	BotName   string  `json:"botName"`
}

// MsgKind discriminates outbound message payloads.
type MsgKind string

const (
	KindOrder  MsgKind = "ORDER"
	KindRemove MsgKind = "REMOVE"
)

// Msg is one outbound message to the exchange: either a new order or a
// cancellation of an existing one.
type Msg struct {
	Kind    MsgKind `json:"kind"`
	Order   *Order  `json:"order,omitempty"`
	OrderID int64   `json:"orderId,omitempty"` // REMOVE target
}

// NewOrderMsg wraps an order in an ORDER message.
func NewOrderMsg(o Order) Msg {
	return Msg{Kind: KindOrder, Order: &o}
}

// NewRemoveMsg builds a REMOVE message for an existing order id.
// Cancels reference ids, they never consume new ones.
func NewRemoveMsg(id int64) Msg {
	return Msg{Kind: KindRemove, OrderID: id}
}

// Trade describes one executed match as reported by the harness.
// The aggressor crossed the book; the resting side was already on it.
type Trade struct {
	Ticker      string  `json:"ticker"`
	Price       float64 `json:"price"`
	Size        int64   `json:"size"`
	AggBot      string  `json:"aggBot"`
	AggDir      Side    `json:"aggDir"`
	AggOrderID  int64   `json:"aggOrderId"`
	RestBot     string  `json:"restBot"`
	RestOrderID int64   `json:"restOrderId"`
}
