package cart

import (
	"github.com/shopspring/decimal"

	"github.com/aniayu/storefront-go/internal/clients"
)

// Line is one (product, size) entry of the cart.
type Line struct {
	ID        string           `json:"id"`
	ProductID string           `json:"productId"`
	Name      string           `json:"name"`
	Size      string           `json:"size"`
	Quantity  int              `json:"quantity"`
	Price     decimal.Decimal  `json:"price"`
	Image     string           `json:"image"`
	Product   *clients.Product `json:"product,omitempty"`

	// server line ids folded into this one
	dupIDs []string
}

func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ids lists every server line id backing this line, the primary first.
func (l Line) ids() []string {
	return append([]string{l.ID}, l.dupIDs...)
}

type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	TotalItems int             `json:"totalItems"`
}

// Policy holds the shipping and tax knobs. The zero value means free shipping
// and tax-inclusive prices.
type Policy struct {
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	TaxRate               decimal.Decimal
}

// ComputeTotals derives every total from the lines.
func ComputeTotals(lines []Line, p Policy) Totals {
	t := Totals{Subtotal: decimal.Zero}
	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(l.Total())
		t.TotalItems += l.Quantity
	}

	t.Shipping = decimal.Zero
	if !t.Subtotal.IsZero() && t.Subtotal.LessThan(p.FreeShippingThreshold) {
		t.Shipping = p.ShippingFee
	}

	t.Tax = t.Subtotal.Mul(p.TaxRate).Round(2)
	t.Total = t.Subtotal.Add(t.Shipping).Add(t.Tax)
	return t
}

// Snapshot is a copy of the store's state at one moment.
type Snapshot struct {
	Lines   []Line `json:"items"`
	Totals  Totals `json:"totals"`
	Err     string `json:"error,omitempty"`
	Loading bool   `json:"loading"`
}

// coalesce reshapes server items into lines with at most one line per (product, size).
func coalesce(items []clients.CartItem) []Line {
	type key struct{ productID, size string }

	lines := make([]Line, 0, len(items))
	index := make(map[key]int, len(items))

	for _, it := range items {
		productID := it.ProductID
		if productID == "" && it.Product != nil {
			productID = it.Product.ID
		}
		k := key{productID, it.Size}

		if i, ok := index[k]; ok {
			lines[i].Quantity += it.Quantity
			lines[i].dupIDs = append(lines[i].dupIDs, it.ID)
			continue
		}

		l := Line{
			ID:        it.ID,
			ProductID: productID,
			Name:      it.Name,
			Size:      it.Size,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Image:     it.Image,
			Product:   it.Product,
		}
		if it.Product != nil {
			if l.Name == "" {
				l.Name = it.Product.Name
			}
			if l.Image == "" {
				l.Image = it.Product.ImageURL
			}
			if l.Price.IsZero() {
				l.Price = it.Product.Price
			}
		}

		index[k] = len(lines)
		lines = append(lines, l)
	}
	return lines
}
