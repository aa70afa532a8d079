package dto

type TrackOrdersRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}
