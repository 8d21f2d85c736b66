package domain

import (
	"github.com/dwikikusuma/storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

// Item is the menu snapshot a line is created from.
type Item struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Category string
}

type Line struct {
	ItemID   string          `json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Quantity int             `json:"quantity"`
}

func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l Line) DiscountedTotal(p pricing.Policy) decimal.Decimal {
	return pricing.UnitPrice(l.Price, l.Category, p).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is a user's ordered list of lines keyed by item id. It holds no
// persistence; callers save it after each mutation.
type Cart struct {
	UserID string
	lines  []Line
}

func New(userID string) *Cart {
	return &Cart{UserID: userID}
}

// Restore rebuilds a cart from stored lines, dropping lines with a
// non-positive quantity and merging duplicates.
func Restore(userID string, lines []Line) *Cart {
	c := New(userID)
	for _, l := range lines {
		if l.Quantity <= 0 || l.ItemID == "" {
			continue
		}
		if i := c.index(l.ItemID); i >= 0 {
			c.lines[i].Quantity += l.Quantity
			continue
		}
		c.lines = append(c.lines, l)
	}
	return c
}

// Add increments an existing line or appends a new one with quantity 1.
func (c *Cart) Add(item Item) {
	if i := c.index(item.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, Line{
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Category: item.Category,
		Quantity: 1,
	})
}

// Remove is a no-op when the item is not in the cart.
func (c *Cart) Remove(itemID string) {
	i := c.index(itemID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// SetQuantity removes the line when qty <= 0. Unknown items are ignored.
func (c *Cart) SetQuantity(itemID string, qty int) {
	if qty <= 0 {
		c.Remove(itemID)
		return
	}
	if i := c.index(itemID); i >= 0 {
		c.lines[i].Quantity = qty
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) RawTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Total())
	}
	return total
}

func (c *Cart) DiscountedTotal(p pricing.Policy) decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.DiscountedTotal(p))
	}
	return total
}

func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) index(itemID string) int {
	for i, l := range c.lines {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}
