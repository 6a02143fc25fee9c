package model

// Listing is a single visible sell order.
type Listing struct {
	ItemID   int64   `json:"item_id"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
	Rank     int     `json:"rank"` // 1-based slot index in the source feed
}

// ItemOrderBook holds every valid listing of one item.
type ItemOrderBook struct {
	ItemID   int64
	Listings []Listing
}

// IsEmpty reports whether the book has no listings to price against.
func (b ItemOrderBook) IsEmpty() bool {
	return len(b.Listings) == 0
}

// TotalQuantity sums the quantity of every listing.
func (b ItemOrderBook) TotalQuantity() int64 {
	var total int64
	for _, l := range b.Listings {
		total += l.Quantity
	}
	return total
}

// Slot is one raw price/amount column pair. Nil means the column was empty.
type Slot struct {
	Price  *float64
	Amount *float64
}

// MarketRow is one item as delivered by the fetch layer or a wide CSV file.
type MarketRow struct {
	ItemID       int64
	ItemName     string
	ItemType     string
	AveragePrice *float64
	MyQuantity   int
	Slots        []Slot
}
