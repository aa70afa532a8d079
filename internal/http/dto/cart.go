package dto

import "github.com/aniayu/storefront-go/internal/cart"

type CartItemRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// CartResponse carries the cart after an action. OK is false when the action failed;
// the reason is in Cart.Err.
type CartResponse struct {
	OK   bool          `json:"ok"`
	Cart cart.Snapshot `json:"cart"`
}

type SessionResponse struct {
	Ready   bool   `json:"ready"`
	GuestID string `json:"guestId,omitempty"`
}
