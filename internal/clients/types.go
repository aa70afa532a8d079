package clients

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Dimensions struct {
	Length *float64 `json:"length,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Unit   string   `json:"unit,omitempty"`
}

type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type Product struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	Description      string           `json:"description"`
	ShortDescription string           `json:"short_description,omitempty"`
	CategoryID       string           `json:"category_id"`
	Price            decimal.Decimal  `json:"price"`
	OriginalPrice    *decimal.Decimal `json:"original_price,omitempty"`
	DiscountPercent  *float64         `json:"discount_percent,omitempty"`
	Currency         string           `json:"currency,omitempty"`

	ImageURL string   `json:"image_url"`
	Images   []string `json:"images"`
	VideoURL string   `json:"video_url,omitempty"`

	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	Material    string   `json:"material"`
	Occasion    string   `json:"occasion"`
	AgeRange    string   `json:"age_range"`
	Features    []string `json:"features"`
	InStock     *bool    `json:"in_stock,omitempty"`
	Featured    bool     `json:"featured"`
	Section     *int     `json:"section,omitempty"`

	SKU            string         `json:"sku,omitempty"`
	Barcode        string         `json:"barcode,omitempty"`
	Brand          string         `json:"brand,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	Specifications map[string]any `json:"specifications,omitempty"`

	StockQuantity     *int `json:"stock_quantity,omitempty"`
	LowStockThreshold *int `json:"low_stock_threshold,omitempty"`

	ShippingWeight *float64    `json:"shipping_weight,omitempty"`
	Dimensions     *Dimensions `json:"dimensions,omitempty"`

	ReturnPolicy    string   `json:"return_policy,omitempty"`
	Warranty        string   `json:"warranty,omitempty"`
	MetaTitle       string   `json:"meta_title,omitempty"`
	MetaDescription string   `json:"meta_description,omitempty"`
	MetaKeywords    []string `json:"meta_keywords,omitempty"`

	Status       string `json:"status,omitempty"`
	Customizable bool   `json:"customizable,omitempty"`

	Category *CategoryRef `json:"category,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
	Featured     bool   `json:"featured"`
	ProductCount *int   `json:"product_count,omitempty"`
}

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

type ProductPage struct {
	Products   []Product      `json:"products"`
	Pagination Pagination     `json:"pagination"`
	Filters    map[string]any `json:"filters,omitempty"`
}

type Banner struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	Description     string `json:"description"`
	Image           string `json:"image"`
	CTAText         string `json:"ctaText"`
	CTALink         string `json:"ctaLink"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
	Featured        bool   `json:"featured"`
	Order           int    `json:"order"`
}

type TopPick struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Image         string          `json:"image"`
	Rating        float64         `json:"rating"`
	ReviewCount   int             `json:"reviewCount"`
	Badge         string          `json:"badge"`
	Description   string          `json:"description"`
}

type Testimonial struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	Rating      float64 `json:"rating"`
	Review      string  `json:"review"`
	ProductName string  `json:"productName"`
	Image       string  `json:"image"`
	Date        string  `json:"date"`
	Verified    bool    `json:"verified"`
}

type BusinessStats struct {
	TotalCustomers    int     `json:"totalCustomers"`
	HappyCustomers    int     `json:"happyCustomers"`
	ProductsDelivered int     `json:"productsDelivered"`
	CitiesCovered     int     `json:"citiesCovered"`
	AverageRating     float64 `json:"averageRating"`
}

type Homepage struct {
	Banners      []Banner      `json:"banners"`
	TopPicks     []TopPick     `json:"topPicks"`
	BestSellers  []BestSeller  `json:"bestSellers"`
	Testimonials []Testimonial `json:"testimonials"`
	Stats        BusinessStats `json:"stats"`
	Categories   []Category    `json:"categories"`
}

type BestSeller struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Image         string          `json:"image"`
	Rating        float64         `json:"rating"`
	ReviewCount   int             `json:"reviewCount"`
	SalesCount    int             `json:"salesCount"`
	Rank          int             `json:"rank"`
	Description   string          `json:"description"`
	AgeRange      string          `json:"ageRange"`
}

// CartItem is one line of the server-side cart.
type CartItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
	Total     decimal.Decimal `json:"total"`
	Product   *Product        `json:"product,omitempty"`
}

type CartSummary struct {
	TotalItems int             `json:"totalItems"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type Cart struct {
	Items       []CartItem      `json:"items"`
	TotalItems  int             `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Summary     *CartSummary    `json:"summary,omitempty"`
}

type AddToCartRequest struct {
	SessionID string           `json:"sessionId,omitempty"`
	ProductID string           `json:"productId"`
	Size      string           `json:"size"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

type MutationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type AddToCartResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	CartItem CartItem `json:"cartItem"`
}

type AddressRequest struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
	PostalCode   string `json:"postalCode"`
}

type Address struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
)

type CheckoutRequest struct {
	AddressID     string        `json:"addressId"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	CartItemIDs   []string      `json:"cartItemIds,omitempty"`
}

type CheckoutResponse struct {
	Success         bool            `json:"success"`
	OrderID         string          `json:"orderId"`
	Message         string          `json:"message"`
	RequiresPayment bool            `json:"requiresPayment"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency,omitempty"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod,omitempty"`
	RazorpayOrderID string          `json:"razorpayOrderId,omitempty"`
	Key             string          `json:"key,omitempty"`
}

type CreatePaymentOrderRequest struct {
	OrderID  string          `json:"orderId"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
}

type CreatePaymentOrderResponse struct {
	Success         bool            `json:"success"`
	RazorpayOrderID string          `json:"razorpayOrderId"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Key             string          `json:"key"`
}

// VerifyPaymentRequest is sent snake_case, which is what the API expects.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

type VerifyPaymentResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Message string `json:"message"`
}

type OrderItem struct {
	ID          string          `json:"id,omitempty"`
	ProductID   string          `json:"product_id,omitempty"`
	ProductName string          `json:"product_name,omitempty"`
	Name        string          `json:"name,omitempty"`
	Size        string          `json:"size,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
}

type OrderAddress struct {
	ID           string `json:"id,omitempty"`
	FullName     string `json:"full_name,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	AddressLine1 string `json:"address_line1,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	Country      string `json:"country,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
}

type Order struct {
	ID            string           `json:"id"`
	OrderNumber   string           `json:"order_number,omitempty"`
	Status        string           `json:"status"`
	Items         []OrderItem      `json:"items"`
	Address       *OrderAddress    `json:"address,omitempty"`
	TotalAmount   *decimal.Decimal `json:"total_amount,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	PaymentMethod string           `json:"payment_method,omitempty"`
	PaymentStatus string           `json:"payment_status,omitempty"`
	CreatedAt     string           `json:"created_at,omitempty"`
}

// UnmarshalJSON accepts both the bare order and the {"order": {...}} wrapper.
func (o *Order) UnmarshalJSON(b []byte) error {
	type plain Order
	var wrapped struct {
		Order *json.RawMessage `json:"order"`
	}
	if err := json.Unmarshal(b, &wrapped); err == nil && wrapped.Order != nil {
		b = *wrapped.Order
	}
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*o = Order(p)
	return nil
}

type TrackOrdersRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Health struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}
