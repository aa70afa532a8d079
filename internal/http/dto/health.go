package dto

import "github.com/aniayu/storefront-go/internal/clients"

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type UpstreamsHealthResponse struct {
	Status   string                 `json:"status"`
	Service  string                 `json:"service"`
	Upstream []clients.HealthResult `json:"upstream"`
}
