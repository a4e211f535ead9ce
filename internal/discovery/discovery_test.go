package discovery

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func TestResolveAddr(t *testing.T) {
	src := &net.UDPAddr{IP: net.IPv4(192, 168, 1, 5), Port: 40000}
	tests := []struct {
		advertised string
		want       string
		ok         bool
	}{
		{"0.0.0.0:9999", "192.168.1.5:9999", true},
		{":9999", "192.168.1.5:9999", true},
		{"10.0.0.2:9999", "10.0.0.2:9999", true},
		{"nonsense", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := resolveAddr(tt.advertised, src)
		if ok != tt.ok || got != tt.want {
			t.Errorf("resolveAddr(%q): expected %q/%t, got %q/%t", tt.advertised, tt.want, tt.ok, got, ok)
		}
	}
}

func TestPanelsExpire(t *testing.T) {
	b := NewBrowser()
	now := time.Now()

	b.record(PanelInfo{Name: "b", Addr: "10.0.0.2:9999"}, now.Add(-PanelExpiry-time.Second))
	b.record(PanelInfo{Name: "a", Addr: "10.0.0.1:9999"}, now)

	panels := b.panelsAt(now)
	if len(panels) != 1 || panels[0].Name != "a" {
		t.Errorf("expected only the fresh panel, got %+v", panels)
	}
}

func TestPanelsSortedByName(t *testing.T) {
	b := NewBrowser()
	now := time.Now()
	b.record(PanelInfo{Name: "kitchen", Addr: "10.0.0.2:9999"}, now)
	b.record(PanelInfo{Name: "hall", Addr: "10.0.0.1:9999"}, now)

	panels := b.panelsAt(now)
	if len(panels) != 2 || panels[0].Name != "hall" || panels[1].Name != "kitchen" {
		t.Errorf("expected hall, kitchen; got %+v", panels)
	}
}

func TestBeaconToBrowser(t *testing.T) {
	b := NewBrowser()
	if err := b.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("start browser: %v", err)
	}
	defer b.Stop()

	attached := true
	beacon := NewBeacon(b.LocalAddr().Port, func() PanelInfo {
		return PanelInfo{Name: "test", Addr: "0.0.0.0:9999", Attached: attached, Status: "running", Length: 3}
	})
	if err := beacon.Start(); err != nil {
		t.Fatalf("start beacon: %v", err)
	}
	defer beacon.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for len(b.Panels()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("browser never saw the beacon")
		}
		time.Sleep(10 * time.Millisecond)
	}

	p := b.Panels()[0]
	if p.Addr != "127.0.0.1:9999" {
		t.Errorf("expected wildcard address resolved to sender, got %s", p.Addr)
	}
	if p.Name != "test" || p.Length != 3 || !p.Attached {
		t.Errorf("unexpected panel info: %+v", p)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, err := b.Find(ctx); !errors.Is(err, ErrNoPanel) {
		t.Errorf("expected ErrNoPanel while attached, got %v", err)
	}
}

func TestFindReturnsFreePanel(t *testing.T) {
	b := NewBrowser()
	b.record(PanelInfo{Name: "busy", Addr: "10.0.0.1:9999", Attached: true}, time.Now())
	b.record(PanelInfo{Name: "free", Addr: "10.0.0.2:9999"}, time.Now())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	p, err := b.Find(ctx)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if p.Name != "free" {
		t.Errorf("expected the free panel, got %s", p.Name)
	}
}

func TestLoopbackAndLANBeaconsMerge(t *testing.T) {
	now := time.Now()

	// Loopback copy first, then the broadcast copy.
	b := NewBrowser()
	b.record(PanelInfo{Name: "snake", Addr: "127.0.0.1:9999"}, now)
	b.record(PanelInfo{Name: "snake", Addr: "192.168.1.5:9999", Length: 4}, now)
	panels := b.panelsAt(now)
	if len(panels) != 1 || panels[0].Addr != "192.168.1.5:9999" {
		t.Fatalf("expected one LAN entry, got %+v", panels)
	}

	// Later loopback beacons refresh the LAN entry instead of adding one.
	b.record(PanelInfo{Name: "snake", Addr: "127.0.0.1:9999", Length: 5}, now.Add(time.Second))
	panels = b.panelsAt(now.Add(time.Second))
	if len(panels) != 1 || panels[0].Addr != "192.168.1.5:9999" || panels[0].Length != 5 {
		t.Fatalf("expected refreshed LAN entry, got %+v", panels)
	}
}

func TestDistinctServersStaySeparate(t *testing.T) {
	now := time.Now()
	b := NewBrowser()
	b.record(PanelInfo{Name: "snake", Addr: "192.168.1.5:9999"}, now)
	b.record(PanelInfo{Name: "snake", Addr: "192.168.1.6:9999"}, now)
	b.record(PanelInfo{Name: "other", Addr: "127.0.0.1:9999"}, now)

	if got := len(b.panelsAt(now)); got != 3 {
		t.Errorf("expected 3 panels, got %d", got)
	}
}
