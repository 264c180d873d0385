package cart

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// カート明細。
// 価格・在庫は追加時点のスナップショット。
type Entry struct {
	ProductID int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Stock     int64           `json:"stock"`
}

// 在庫スナップショットを超えて追加しようとしたときのエラー。
// 「あとN個しか無い」をそのまま画面に出せるようにする。
type StockExceededError struct {
	ProductID int64
	Name      string
	Available int64
	Requested int64
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("Cannot add more items. Only %d available in stock.", e.Available)
}

// 買い物中の選択状態。明細は追加順を保つ。
type Cart struct {
	entries []Entry
}

func New() *Cart {
	return &Cart{}
}

// Add は商品をカートへ追加する。
// 既にあれば数量を加算。加算後がスナップショット在庫を超えるなら
// 追加自体を中止してStockExceededErrorを返す（黙って減らさない）。
// 新規なら min(要求数, 在庫) で入れる。
func (c *Cart) Add(e Entry) error {
	if e.ProductID <= 0 || e.Quantity < 1 {
		return fmt.Errorf("invalid cart entry")
	}

	for i := range c.entries {
		if c.entries[i].ProductID != e.ProductID {
			continue
		}

		newQty := c.entries[i].Quantity + e.Quantity
		if newQty > e.Stock {
			return &StockExceededError{
				ProductID: e.ProductID,
				Name:      e.Name,
				Available: e.Stock,
				Requested: newQty,
			}
		}

		c.entries[i].Quantity = newQty
		//スナップショットは最新に更新
		c.entries[i].Name = e.Name
		c.entries[i].Price = e.Price
		c.entries[i].Stock = e.Stock
		return nil
	}

	if e.Stock <= 0 {
		return &StockExceededError{
			ProductID: e.ProductID,
			Name:      e.Name,
			Available: 0,
			Requested: e.Quantity,
		}
	}
	if e.Quantity > e.Stock {
		e.Quantity = e.Stock
	}
	c.entries = append(c.entries, e)
	return nil
}

// SetQuantity は数量変更。n<=0 は削除と同じ。
// 上限は在庫スナップショット。
func (c *Cart) SetQuantity(productID int64, n int64) {
	if n <= 0 {
		c.Remove(productID)
		return
	}
	for i := range c.entries {
		if c.entries[i].ProductID != productID {
			continue
		}
		if n > c.entries[i].Stock {
			n = c.entries[i].Stock
		}
		if n < 1 {
			n = 1
		}
		c.entries[i].Quantity = n
		return
	}
}

func (c *Cart) Remove(productID int64) {
	out := c.entries[:0]
	for _, e := range c.entries {
		if e.ProductID != productID {
			out = append(out, e)
		}
	}
	c.entries = out
}

func (c *Cart) Clear() {
	c.entries = nil
}

func (c *Cart) Len() int {
	return len(c.entries)
}

// Entries は明細のコピーを返す（追加順）。
func (c *Cart) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Subtotal は sum(単価スナップショット × 数量)。副作用なし。
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.entries {
		total = total.Add(e.Price.Mul(decimal.NewFromInt(e.Quantity)))
	}
	return total
}

// Encode はJSON配列にする（空カートは []）。
func (c *Cart) Encode() []byte {
	entries := c.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		// Entryにmarshal不能な値は無い
		return []byte("[]")
	}
	return data
}

// Decode はJSONからカートを復元する。
// 壊れたデータ・配列でないデータは「空カート扱い」にする（fail open）。
// エラーにして買い物を止めるより、空から始め直すほうがよい。
func Decode(data []byte) *Cart {
	if len(data) == 0 {
		return New()
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return New()
	}

	c := New()
	for _, e := range entries {
		if e.ProductID <= 0 || e.Quantity < 1 {
			continue
		}
		c.entries = append(c.entries, e)
	}
	return c
}
