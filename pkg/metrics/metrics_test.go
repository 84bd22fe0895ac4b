package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorsRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New()
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}

	m.Commands.WithLabelValues("lvl.profile").Inc()
	m.Commands.WithLabelValues("lvl.profile").Inc()
	m.LevelUps.Inc()

	if got := testutil.ToFloat64(m.Commands.WithLabelValues("lvl.profile")); got != 2 {
		t.Errorf("commands counter = %v, want %v", got, 2)
	}
	if got := testutil.ToFloat64(m.LevelUps); got != 1 {
		t.Errorf("levelups counter = %v, want %v", got, 1)
	}
}
