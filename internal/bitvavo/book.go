package bitvavo

import (
	"encoding/json"
	"fmt"

	"bitvavo-stream/internal/num"
)

// PriceLevel is one book level. On the wire it is a two-element JSON array
// of strings, ["price", "quantity"], never an object. The zero value is the
// sentinel level reported when a side of the book is empty.
type PriceLevel struct {
	Price    num.Decimal
	Quantity num.Decimal
}

func (l *PriceLevel) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("price level must be an array: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("price level must have 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &l.Price); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	if err := json.Unmarshal(pair[1], &l.Quantity); err != nil {
		return fmt.Errorf("quantity: %w", err)
	}
	return nil
}

func (l PriceLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]num.Decimal{l.Price, l.Quantity})
}

func (l PriceLevel) String() string {
	return fmt.Sprintf("[%s @ %s]", l.Quantity, l.Price)
}

// Book is a whole-book snapshot. Sides arrive best-first and are kept in
// wire order.
type Book struct {
	Market string       `json:"market"`
	Nonce  int64        `json:"nonce"`
	Bids   []PriceLevel `json:"bids"`
	Asks   []PriceLevel `json:"asks"`
}
