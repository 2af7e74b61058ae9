package promstat_test

import (
	"strings"
	"testing"

	"github.com/creachadair/lossy"
	"github.com/creachadair/lossy/promstat"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector(t *testing.T) {
	tx, rx := lossy.New[int](3)
	defer rx.Close()
	tx2 := tx.Clone()
	defer tx2.Close()

	for i := range 5 {
		if err := tx.Send(i); err != nil {
			t.Fatalf("Send(%d): unexpected error: %v", i, err)
		}
	}
	if _, st := rx.Poll(nil); st != lossy.Ready {
		t.Fatalf("Poll: got %v, want Ready", st)
	}
	tx.Close()

	c := promstat.New("events", rx, prometheus.Labels{"zone": "test"})
	const want = `
# HELP lossy_buffered Number of values currently buffered.
# TYPE lossy_buffered gauge
lossy_buffered{channel="events",zone="test"} 2
# HELP lossy_capacity Capacity of the channel buffer.
# TYPE lossy_capacity gauge
lossy_capacity{channel="events",zone="test"} 3
# HELP lossy_delivered_total Total number of values delivered to the receiver.
# TYPE lossy_delivered_total counter
lossy_delivered_total{channel="events",zone="test"} 1
# HELP lossy_dropped_total Total number of values discarded to make room for newer ones.
# TYPE lossy_dropped_total counter
lossy_dropped_total{channel="events",zone="test"} 2
# HELP lossy_senders Number of open sender handles.
# TYPE lossy_senders gauge
lossy_senders{channel="events",zone="test"} 1
# HELP lossy_sent_total Total number of values admitted to the channel.
# TYPE lossy_sent_total counter
lossy_sent_total{channel="events",zone="test"} 5
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(want)); err != nil {
		t.Errorf("CollectAndCompare: %v", err)
	}
}

func TestRegister(t *testing.T) {
	tx, rx := lossy.New[string](1)
	defer tx.Close()
	defer rx.Close()

	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(promstat.New("a", rx, nil)); err != nil {
		t.Fatalf("Register a: %v", err)
	}
	if err := reg.Register(promstat.New("b", rx, nil)); err != nil {
		t.Fatalf("Register b: %v", err)
	}
	if err := reg.Register(promstat.New("a", rx, nil)); err == nil {
		t.Error("Register duplicate: got nil, want error")
	}

	tx.Send("x")
	tx.Send("y")
	if n, err := testutil.GatherAndCount(reg, "lossy_dropped_total"); err != nil || n != 2 {
		t.Errorf("GatherAndCount: got %d, %v; want 2, nil", n, err)
	}
}
