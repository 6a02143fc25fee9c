package orderbook

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/Alias1177/Pricer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		slots    []model.Slot
		expected []model.Listing
	}{
		{
			name:     "no slots",
			slots:    nil,
			expected: nil,
		},
		{
			name: "keeps valid slots with original rank",
			slots: []model.Slot{
				{Price: f(100), Amount: f(3)},
				{Price: nil, Amount: nil},
				{Price: f(120), Amount: f(1)},
			},
			expected: []model.Listing{
				{ItemID: 7, Price: 100, Quantity: 3, Rank: 1},
				{ItemID: 7, Price: 120, Quantity: 1, Rank: 3},
			},
		},
		{
			name: "drops non-positive and non-finite values",
			slots: []model.Slot{
				{Price: f(0), Amount: f(5)},
				{Price: f(-10), Amount: f(5)},
				{Price: f(50), Amount: f(0)},
				{Price: f(50), Amount: f(-2)},
				{Price: f(math.NaN()), Amount: f(1)},
				{Price: f(50), Amount: f(math.Inf(1))},
				{Price: f(50), Amount: nil},
				{Price: f(75), Amount: f(2)},
			},
			expected: []model.Listing{
				{ItemID: 7, Price: 75, Quantity: 2, Rank: 8},
			},
		},
		{
			name: "truncates fractional quantity",
			slots: []model.Slot{
				{Price: f(10), Amount: f(0.5)},
				{Price: f(10), Amount: f(2.9)},
			},
			expected: []model.Listing{
				{ItemID: 7, Price: 10, Quantity: 2, Rank: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := Normalize(model.MarketRow{ItemID: 7, Slots: tt.slots})
			assert.Equal(t, int64(7), book.ItemID)
			assert.Equal(t, tt.expected, book.Listings)
		})
	}
}

func TestNormalizeAllKeepsEmptyBooks(t *testing.T) {
	books := NormalizeAll([]model.MarketRow{
		{ItemID: 1, Slots: []model.Slot{{Price: f(5), Amount: f(1)}}},
		{ItemID: 2},
	})
	require.Len(t, books, 2)
	assert.False(t, books[0].IsEmpty())
	assert.True(t, books[1].IsEmpty())
	assert.Equal(t, int64(2), books[1].ItemID)
}

func TestReadWideCSV(t *testing.T) {
	input := "\ufeffitem_id,item_name,item_type,average_price,my_quantity,price_1,amount_1,price_2,amount_2,price_3,amount_3\n" +
		"206,Xanax,Drug,830000,4,\"812,000\",3,815000,10,,\n" +
		"180,Beer,Alcohol,,,abc,1,,,900,2\n"

	rows, err := ReadWideCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	xanax := rows[0]
	assert.Equal(t, int64(206), xanax.ItemID)
	assert.Equal(t, "Xanax", xanax.ItemName)
	assert.Equal(t, "Drug", xanax.ItemType)
	require.NotNil(t, xanax.AveragePrice)
	assert.Equal(t, 830000.0, *xanax.AveragePrice)
	assert.Equal(t, 4, xanax.MyQuantity)
	require.Len(t, xanax.Slots, 3)
	assert.Equal(t, 812000.0, *xanax.Slots[0].Price)
	assert.Nil(t, xanax.Slots[2].Price)

	beer := rows[1]
	assert.Nil(t, beer.AveragePrice)
	assert.Equal(t, 1, beer.MyQuantity)
	assert.Nil(t, beer.Slots[0].Price)

	book := Normalize(beer)
	require.Len(t, book.Listings, 1)
	assert.Equal(t, 3, book.Listings[0].Rank)
}

func TestReadWideCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "missing item_id", input: "item_name,price_1,amount_1\nfoo,1,1\n"},
		{name: "bad item_id", input: "item_id,price_1,amount_1\nabc,1,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadWideCSV(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestWriteWideCSVRoundTrip(t *testing.T) {
	rows := []model.MarketRow{
		{
			ItemID: 1, ItemName: "Kitten", ItemType: "Plushie", AveragePrice: f(500), MyQuantity: 2,
			Slots: []model.Slot{{Price: f(480), Amount: f(1)}, {Price: f(490.5), Amount: f(4)}},
		},
		{ItemID: 2, ItemName: "Empty", MyQuantity: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWideCSV(&buf, rows))

	parsed, err := ReadWideCSV(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, Normalize(rows[0]), Normalize(parsed[0]))
	assert.True(t, Normalize(parsed[1]).IsEmpty())
	assert.Equal(t, "Plushie", parsed[0].ItemType)
}
