package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// dependencyUp is 1 when the last health probe of a dependency succeeded.
	// Labels:
	// - dependency: "postgres", "redis", "templates"
	dependencyUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "courier",
		Subsystem: "health",
		Name:      "dependency_up",
		Help:      "Dependency availability (1=up, 0=down).",
	}, []string{"dependency"})
)

// SetDependencyUp records the result of a health probe.
func SetDependencyUp(dependency string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	dependencyUp.WithLabelValues(dependency).Set(v)
}
