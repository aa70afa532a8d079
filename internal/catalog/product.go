package catalog

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/aniayu/storefront-go/internal/clients"
)

const (
	DefaultCurrency          = "INR"
	DefaultStatus            = "active"
	DefaultLowStockThreshold = 5
)

type Stock string

const (
	InStock    Stock = "in_stock"
	LowStock   Stock = "low_stock"
	OutOfStock Stock = "out_of_stock"
)

// Normalize fills the defaults the API leaves out.
func Normalize(p clients.Product) clients.Product {
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if p.InStock == nil {
		in := true
		p.InStock = &in
	}
	if p.Status == "" {
		p.Status = DefaultStatus
	}
	if p.LowStockThreshold == nil || *p.LowStockThreshold <= 0 {
		th := DefaultLowStockThreshold
		p.LowStockThreshold = &th
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	if p.Colors == nil {
		p.Colors = []string{}
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	return p
}

func NormalizeAll(list []clients.Product) []clients.Product {
	out := make([]clients.Product, 0, len(list))
	for _, p := range list {
		out = append(out, Normalize(p))
	}
	return out
}

func MainImage(p clients.Product) string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// DiscountPercent is the rounded percentage off original. Zero when there is no discount.
func DiscountPercent(original, current decimal.Decimal) int {
	if !original.IsPositive() || current.GreaterThanOrEqual(original) {
		return 0
	}
	pct := original.Sub(current).Div(original).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}

// FormatINR renders whole rupees with Indian digit grouping, e.g. ₹1,23,456.
func FormatINR(price decimal.Decimal) string {
	r := price.Round(0)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	digits := r.String()

	if len(digits) > 3 {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		groups = append([]string{head}, groups...)
		digits = strings.Join(groups, ",") + "," + tail
	}
	return sign + "₹" + digits
}

func StockStatus(p clients.Product) Stock {
	if p.StockQuantity == nil {
		return InStock
	}
	qty := *p.StockQuantity
	threshold := DefaultLowStockThreshold
	if p.LowStockThreshold != nil && *p.LowStockThreshold > 0 {
		threshold = *p.LowStockThreshold
	}
	switch {
	case qty <= 0:
		return OutOfStock
	case qty <= threshold:
		return LowStock
	default:
		return InStock
	}
}

func StockDisplay(p clients.Product) string {
	switch StockStatus(p) {
	case OutOfStock:
		return "Out of Stock"
	case LowStock:
		return "Only " + strconv.Itoa(*p.StockQuantity) + " left"
	default:
		if p.StockQuantity != nil {
			return strconv.Itoa(*p.StockQuantity) + " in stock"
		}
		return "In Stock"
	}
}
