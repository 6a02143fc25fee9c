package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Alias1177/Pricer/internal/api/torn"
)

// parseItems reads "206:3,180" into requests. A missing quantity means 1 and
// repeated ids are summed in first-seen order.
func parseItems(list string) ([]torn.ItemRequest, error) {
	var out []torn.ItemRequest
	index := make(map[int64]int)

	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		idText, qtyText, hasQty := strings.Cut(part, ":")
		id, err := strconv.ParseInt(strings.TrimSpace(idText), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid item id %q", idText)
		}

		qty := 1
		if hasQty {
			qty, err = strconv.Atoi(strings.TrimSpace(qtyText))
			if err != nil || qty < 0 {
				return nil, fmt.Errorf("invalid quantity %q for item %d", qtyText, id)
			}
		}

		if i, ok := index[id]; ok {
			out[i].MyQuantity += qty
			continue
		}
		index[id] = len(out)
		out = append(out, torn.ItemRequest{ItemID: id, MyQuantity: qty})
	}
	return out, nil
}
