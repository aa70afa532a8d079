package dto

type WishlistResponse struct {
	Items []string `json:"items"`
	Count int      `json:"count"`
	Saved *bool    `json:"saved,omitempty"`
}
