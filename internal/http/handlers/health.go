package handlers

import (
	"net/http"

	"github.com/aniayu/storefront-go/internal/clients"
	"github.com/aniayu/storefront-go/internal/http/dto"
)

const serviceName = "storefront"

type HealthHandler struct {
	Probes []clients.HealthProbe
}

func (h *HealthHandler) Service(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok", Service: serviceName})
}

func (h *HealthHandler) Upstreams(w http.ResponseWriter, r *http.Request) {
	results := clients.CheckAll(r.Context(), h.Probes)

	status := "ok"
	for _, res := range results {
		if !res.OK {
			status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, dto.UpstreamsHealthResponse{
		Status:   status,
		Service:  serviceName,
		Upstream: results,
	})
}
