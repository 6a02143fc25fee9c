package torn

import (
	"fmt"

	"github.com/Alias1177/Pricer/internal/model"
)

// AuthMode is one way of presenting the API key.
type AuthMode int

const (
	AuthHeaderApikey AuthMode = iota // Authorization: Apikey <key>
	AuthHeaderApiKey                 // Authorization: ApiKey <key>
	AuthQueryKey                     // ?key=<key>
)

// authModes is the order modes are tried in when the provider rejects the key.
var authModes = []AuthMode{AuthHeaderApikey, AuthHeaderApiKey, AuthQueryKey}

func (m AuthMode) String() string {
	switch m {
	case AuthHeaderApikey:
		return "header_apikey"
	case AuthHeaderApiKey:
		return "header_api_key"
	case AuthQueryKey:
		return "query_key"
	}
	return "unknown"
}

// Provider error codes with special handling.
const (
	CodeUnknown      = 0
	CodeIncorrectKey = 2
	CodeBackendError = 10
)

// APIError is an error object returned in the response body.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// Transient reports whether the provider asks us to try again later.
func (e *APIError) Transient() bool {
	return e.Code == CodeUnknown || e.Code == CodeBackendError
}

// ItemRequest names an item to fetch and the quantity the caller holds.
type ItemRequest struct {
	ItemID     int64
	MyQuantity int
}

// FetchResult is the outcome for one item of a batch.
type FetchResult struct {
	Request ItemRequest
	Row     model.MarketRow
	Err     error
}

type marketResponse struct {
	ItemMarket *struct {
		Item struct {
			ID           int64    `json:"id"`
			Name         string   `json:"name"`
			Type         string   `json:"type"`
			AveragePrice *float64 `json:"average_price"`
		} `json:"item"`
		Listings []struct {
			Price  *float64 `json:"price"`
			Amount *float64 `json:"amount"`
		} `json:"listings"`
	} `json:"itemmarket"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"error"`
	} `json:"error"`
}
