package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotebot/pkg/exchange"
)

const botName = "MarketMakerBot"

func newTestMaker(instruments ...exchange.Instrument) *MarketMaker {
	if len(instruments) == 0 {
		instruments = []exchange.Instrument{
			{Ticker: "UEC", PosLimit: 100, TickSize: 0.5},
		}
	}
	m := NewMarketMaker(botName, instruments, DefaultParams(), nil)
	m.SetStartID(100)
	return m
}

func testBook() exchange.Book {
	return exchange.Book{
		"UEC": {
			Bids: []exchange.Rest{{Price: 99, Size: 10}},
			Asks: []exchange.Rest{{Price: 101, Size: 10}},
		},
		"SOBER": {
			Bids: []exchange.Rest{{Price: 49, Size: 10}},
			Asks: []exchange.Rest{{Price: 51, Size: 10}},
		},
	}
}

func TestRefresh_FirstTurnQuotesBothSides(t *testing.T) {
	m := newTestMaker()

	msgs := m.Refresh(testBook())

	require.Len(t, msgs, 2)
	require.Equal(t, exchange.KindOrder, msgs[0].Kind)
	require.Equal(t, exchange.KindOrder, msgs[1].Kind)

	buy, sell := msgs[0].Order, msgs[1].Order
	assert.Equal(t, exchange.Buy, buy.Direction)
	assert.Equal(t, exchange.Sell, sell.Direction)
	assert.Equal(t, int64(100), buy.OrderID)
	assert.Equal(t, int64(101), sell.OrderID)
	assert.Equal(t, botName, buy.BotName)
	assert.InDelta(t, 99.5, buy.Price, 1e-9)
	assert.InDelta(t, 100.5, sell.Price, 1e-9)

	open := m.OpenOrders()
	require.Len(t, open, 2)
	assert.Equal(t, RestingOrder{Ticker: "UEC", Side: exchange.Buy, Size: 5, Price: 99.5}, open[100])
	assert.Equal(t, RestingOrder{Ticker: "UEC", Side: exchange.Sell, Size: 5, Price: 100.5}, open[101])
}

func TestRefresh_CancelsBeforeRequoting(t *testing.T) {
	uec := exchange.Instrument{Ticker: "UEC", PosLimit: 100, TickSize: 0.5}
	sober := exchange.Instrument{Ticker: "SOBER", PosLimit: 50, TickSize: 1}
	m := newTestMaker(uec, sober)
	book := testBook()

	first := m.Refresh(book)
	require.Len(t, first, 4)

	second := m.Refresh(book)
	require.Len(t, second, 8)

	// All cancels first, ascending id, referencing the first batch.
	for i, id := range []int64{100, 101, 102, 103} {
		require.Equal(t, exchange.KindRemove, second[i].Kind)
		assert.Equal(t, id, second[i].OrderID)
	}
	// Then fresh orders, buy before sell per instrument, construction order.
	wantOrders := []struct {
		ticker string
		dir    exchange.Side
		id     int64
	}{
		{"UEC", exchange.Buy, 104},
		{"UEC", exchange.Sell, 105},
		{"SOBER", exchange.Buy, 106},
		{"SOBER", exchange.Sell, 107},
	}
	for i, want := range wantOrders {
		msg := second[4+i]
		require.Equal(t, exchange.KindOrder, msg.Kind)
		assert.Equal(t, want.ticker, msg.Order.Ticker)
		assert.Equal(t, want.dir, msg.Order.Direction)
		assert.Equal(t, want.id, msg.Order.OrderID)
	}

	// Open set fully replaced: still 2 x instruments, all new ids.
	open := m.OpenOrders()
	require.Len(t, open, 4)
	for _, id := range []int64{100, 101, 102, 103} {
		assert.NotContains(t, open, id)
	}
	for _, id := range []int64{104, 105, 106, 107} {
		assert.Contains(t, open, id)
	}
}

func TestRefresh_OrderIDsStrictlyIncreasing(t *testing.T) {
	uec := exchange.Instrument{Ticker: "UEC", PosLimit: 100, TickSize: 0.5}
	sober := exchange.Instrument{Ticker: "SOBER", PosLimit: 50, TickSize: 1}
	m := newTestMaker(uec, sober)
	book := testBook()

	var ids []int64
	for turn := 0; turn < 10; turn++ {
		for _, msg := range m.Refresh(book) {
			if msg.Kind == exchange.KindOrder {
				ids = append(ids, msg.Order.OrderID)
			}
		}
	}

	require.Len(t, ids, 40)
	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1])
	}
}

func TestRefresh_EmptyBookStillQuotes(t *testing.T) {
	m := newTestMaker()

	msgs := m.Refresh(exchange.Book{})

	require.Len(t, msgs, 2)
	assert.InDelta(t, 999.5, msgs[0].Order.Price, 1e-9)
	assert.InDelta(t, 1000.5, msgs[1].Order.Price, 1e-9)
}

func TestRefresh_DisabledTickerSkipped(t *testing.T) {
	uec := exchange.Instrument{Ticker: "UEC", PosLimit: 100, TickSize: 0.5}
	sober := exchange.Instrument{Ticker: "SOBER", PosLimit: 50, TickSize: 1}
	p := DefaultParams()
	p.Disabled = map[string]bool{"SOBER": true}
	m := NewMarketMaker(botName, []exchange.Instrument{uec, sober}, p, nil)
	m.SetStartID(1)

	msgs := m.Refresh(testBook())

	require.Len(t, msgs, 2)
	for _, msg := range msgs {
		assert.Equal(t, "UEC", msg.Order.Ticker)
	}
}

func TestOnTrades_AggressorBuyIncreasesPosition(t *testing.T) {
	m := newTestMaker()
	m.Refresh(testBook()) // open ids 100, 101

	m.OnTrades([]exchange.Trade{{
		Ticker:     "UEC",
		Size:       3,
		AggBot:     botName,
		AggDir:     exchange.Buy,
		AggOrderID: 100,
		RestBot:    "SomeoneElse",
	}})

	assert.Equal(t, int64(3), m.Positions()["UEC"])
	assert.NotContains(t, m.OpenOrders(), int64(100))
	assert.Contains(t, m.OpenOrders(), int64(101))
}

func TestOnTrades_AggressorSellDecreasesPosition(t *testing.T) {
	m := newTestMaker()

	m.OnTrades([]exchange.Trade{{
		Ticker:     "UEC",
		Size:       2,
		AggBot:     botName,
		AggDir:     exchange.Sell,
		AggOrderID: 9999, // never tracked, ignored
		RestBot:    "SomeoneElse",
	}})

	assert.Equal(t, int64(-2), m.Positions()["UEC"])
}

func TestOnTrades_RestingFillTakesOppositeSign(t *testing.T) {
	m := newTestMaker()
	m.Refresh(testBook()) // open ids 100 (buy), 101 (sell)

	// Aggressor sold into our resting bid: we bought.
	m.OnTrades([]exchange.Trade{{
		Ticker:      "UEC",
		Size:        4,
		AggBot:      "SomeoneElse",
		AggDir:      exchange.Sell,
		RestBot:     botName,
		RestOrderID: 100,
	}})

	assert.Equal(t, int64(4), m.Positions()["UEC"])
	assert.NotContains(t, m.OpenOrders(), int64(100))

	// Aggressor bought from our resting ask: we sold.
	m.OnTrades([]exchange.Trade{{
		Ticker:      "UEC",
		Size:        1,
		AggBot:      "SomeoneElse",
		AggDir:      exchange.Buy,
		RestBot:     botName,
		RestOrderID: 101,
	}})

	assert.Equal(t, int64(3), m.Positions()["UEC"])
	assert.Empty(t, m.OpenOrders())
}

func TestOnTrades_OtherBotsTradesIgnored(t *testing.T) {
	m := newTestMaker()
	m.Refresh(testBook())

	m.OnTrades([]exchange.Trade{{
		Ticker:  "UEC",
		Size:    10,
		AggBot:  "SomeoneElse",
		AggDir:  exchange.Buy,
		RestBot: "AnotherBot",
	}})

	assert.Equal(t, int64(0), m.Positions()["UEC"])
	assert.Len(t, m.OpenOrders(), 2)
}

func TestOnTrades_SelfTradeAppliesBothSides(t *testing.T) {
	m := newTestMaker()
	m.Refresh(testBook()) // open ids 100, 101

	m.OnTrades([]exchange.Trade{{
		Ticker:      "UEC",
		Size:        2,
		AggBot:      botName,
		AggDir:      exchange.Buy,
		AggOrderID:  101,
		RestBot:     botName,
		RestOrderID: 100,
	}})

	// Aggressor buy +2 and resting sell -2 net to flat; both ids cleared.
	assert.Equal(t, int64(0), m.Positions()["UEC"])
	assert.Empty(t, m.OpenOrders())
}

func TestSizePolicy_AppliedThroughRefresh(t *testing.T) {
	tests := []struct {
		name     string
		position int64
		wantSize int64
	}{
		{"inside limit", 79, 5},
		{"past 80 percent", 81, 2},
		{"past 90 percent", 91, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMaker()
			// Build the position through resting fills rather than poking state.
			m.OnTrades([]exchange.Trade{{
				Ticker:  "UEC",
				Size:    tt.position,
				AggBot:  "SomeoneElse",
				AggDir:  exchange.Sell,
				RestBot: botName,
			}})

			msgs := m.Refresh(testBook())
			require.Len(t, msgs, 2)
			assert.Equal(t, tt.wantSize, msgs[0].Order.Size)
			assert.Equal(t, tt.wantSize, msgs[1].Order.Size)
		})
	}
}

func TestSetStartID_SeedsCounter(t *testing.T) {
	m := NewMarketMaker(botName, []exchange.Instrument{{Ticker: "UEC", PosLimit: 100, TickSize: 0.5}}, DefaultParams(), nil)
	m.SetStartID(5000)

	msgs := m.Refresh(exchange.Book{})

	require.Len(t, msgs, 2)
	assert.Equal(t, int64(5000), msgs[0].Order.OrderID)
	assert.Equal(t, int64(5001), msgs[1].Order.OrderID)
}

func TestStats_CountsTurns(t *testing.T) {
	m := newTestMaker()

	turns, next := m.Stats()
	assert.Equal(t, int64(0), turns)
	assert.Equal(t, int64(100), next)

	m.Refresh(testBook())
	m.Refresh(testBook())

	turns, next = m.Stats()
	assert.Equal(t, int64(2), turns)
	assert.Equal(t, int64(104), next)
}
