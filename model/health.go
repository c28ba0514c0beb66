package model

import "github.com/Ngone6325/gofac/v2/discovery"

// ServerHealth reports liveness.
type ServerHealth struct {
	Status  string `json:"status" yaml:"status"`
	Version string `json:"version" yaml:"version"`
}

// IHealthService reports server health.
type IHealthService interface {
	Health() ServerHealth
}

// HealthService is discovered through its tag and built from its zero value.
type HealthService struct {
	discovery.Marker `gofac:"contract=model.IHealthService,lifetime=singleton"`

	version string
}

func (h *HealthService) Health() ServerHealth {
	v := h.version
	if v == "" {
		v = "v1"
	}
	return ServerHealth{Status: "UP", Version: v}
}
