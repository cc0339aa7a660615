package domain

import "time"

// CartLine pairs a product reference with a positive quantity. The product is
// referenced by id only; price and display data are re-resolved against the
// catalog whenever they are needed, so a line never goes stale.
type CartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is a shopper's cart, keyed by session. Invariants: at most one line
// per product id, and every line's quantity is >= 1.
type Cart struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
	Currency  string     `json:"currency"`
	IsOpen    bool       `json:"is_open"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart creates an empty cart for the given session.
func NewCart(sessionID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		SessionID: sessionID,
		Lines:     []CartLine{},
		Currency:  "USD",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FindLine returns the index of the line for the given product id, or -1.
func (c *Cart) FindLine(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddLine merges quantity into an existing line for the product, or appends a
// new line. quantity must be >= 1; callers validate before invoking.
func (c *Cart) AddLine(productID string, quantity int) {
	if i := c.FindLine(productID); i >= 0 {
		c.Lines[i].Quantity += quantity
		return
	}
	c.Lines = append(c.Lines, CartLine{ProductID: productID, Quantity: quantity})
}

// SetQuantity replaces the quantity of the line for the product. A quantity
// of zero or less removes the line. No line is created for an absent product.
func (c *Cart) SetQuantity(productID string, quantity int) {
	i := c.FindLine(productID)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		return
	}
	c.Lines[i].Quantity = quantity
}

// RemoveLine removes the line for the product if present. Removing an absent
// product is a no-op.
func (c *Cart) RemoveLine(productID string) {
	if i := c.FindLine(productID); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

// ClearLines removes all lines from the cart.
func (c *Cart) ClearLines() {
	c.Lines = []CartLine{}
}

// TotalItems returns the sum of line quantities.
func (c *Cart) TotalItems() int {
	var total int
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Clone returns a deep copy of the cart. The store hands out clones so
// callers can never mutate the authoritative state directly.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Lines = make([]CartLine, len(c.Lines))
	copy(cp.Lines, c.Lines)
	return &cp
}
