package metrics

import (
	"github.com/agrosud-co/site-service/types"
)

func New(logger types.Logger, config *types.MetricsConfig) (types.MetricsManager, error) {
	switch config.Type {
	case "prometheus", "":
		return NewPrometheusMetrics(logger), nil
	case "memory":
		return NewMemoryMetrics(), nil
	default:
		return nil, types.Errorf(types.ErrMetricsTypeUnknown, "%s", config.Type)
	}
}
