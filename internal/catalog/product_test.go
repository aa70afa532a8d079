package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/aniayu/storefront-go/internal/clients"
)

func intp(v int) *int { return &v }

func TestFormatINR(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"small":        {"0", "₹0"},
		"hundreds":     {"999", "₹999"},
		"thousands":    {"1299", "₹1,299"},
		"lakh":         {"123456", "₹1,23,456"},
		"crore":        {"12345678", "₹1,23,45,678"},
		"rounds paise": {"1299.6", "₹1,300"},
		"negative":     {"-2500", "-₹2,500"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatINR(decimal.RequireFromString(tc.in)))
		})
	}
}

func TestDiscountPercent(t *testing.T) {
	assert.Equal(t, 20, DiscountPercent(decimal.NewFromInt(1000), decimal.NewFromInt(800)))
	assert.Equal(t, 33, DiscountPercent(decimal.NewFromInt(1499), decimal.NewFromInt(999)))
	assert.Equal(t, 0, DiscountPercent(decimal.NewFromInt(500), decimal.NewFromInt(600)))
	assert.Equal(t, 0, DiscountPercent(decimal.Zero, decimal.NewFromInt(100)))
}

func TestStockStatus(t *testing.T) {
	tests := map[string]struct {
		p       clients.Product
		status  Stock
		display string
	}{
		"unknown quantity": {clients.Product{}, InStock, "In Stock"},
		"sold out":         {clients.Product{StockQuantity: intp(0)}, OutOfStock, "Out of Stock"},
		"at threshold":     {clients.Product{StockQuantity: intp(5)}, LowStock, "Only 5 left"},
		"custom threshold": {clients.Product{StockQuantity: intp(8), LowStockThreshold: intp(10)}, LowStock, "Only 8 left"},
		"plenty":           {clients.Product{StockQuantity: intp(40)}, InStock, "40 in stock"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.status, StockStatus(tc.p))
			assert.Equal(t, tc.display, StockDisplay(tc.p))
		})
	}
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	out := false
	p := Normalize(clients.Product{Currency: "USD", InStock: &out, Status: "draft"})

	assert.Equal(t, "USD", p.Currency)
	assert.False(t, *p.InStock)
	assert.Equal(t, "draft", p.Status)
	assert.Equal(t, DefaultLowStockThreshold, *p.LowStockThreshold)
	assert.NotNil(t, p.Sizes)
}
