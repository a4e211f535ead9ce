// Package discovery advertises panel servers on the LAN over UDP so a
// client can connect without knowing the address.
package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"sort"
	"sync"
	"time"
)

const (
	// BeaconPort is the UDP port used for panel discovery.
	BeaconPort = 9998
	// BeaconInterval is how often servers advertise themselves.
	BeaconInterval = 1 * time.Second
	// PanelExpiry is how long a panel stays visible after its last beacon.
	PanelExpiry = 4 * time.Second
)

// ErrNoPanel is returned by Find when no free panel shows up in time.
var ErrNoPanel = errors.New("no free panel found")

// PanelInfo describes a panel server on the network.
type PanelInfo struct {
	Name     string `json:"name"`
	Addr     string `json:"addr"` // TCP host:port to connect to
	Attached bool   `json:"attached"`
	Status   string `json:"status"`
	Length   int    `json:"length"`
}

// --- Beacon ---

// Beacon periodically broadcasts the panel info returned by describe.
type Beacon struct {
	describe func() PanelInfo
	port     int
	done     chan struct{}
	stopOnce sync.Once
}

// NewBeacon creates a beacon sending to port. describe is called for
// every broadcast so the advertised state stays current.
func NewBeacon(port int, describe func() PanelInfo) *Beacon {
	return &Beacon{
		describe: describe,
		port:     port,
		done:     make(chan struct{}),
	}
}

// Start begins broadcasting.
func (b *Beacon) Start() error {
	// ListenPacket rather than DialUDP so broadcast works on Linux.
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return fmt.Errorf("create beacon socket: %w", err)
	}
	go b.broadcastLoop(conn)
	return nil
}

// Stop stops the beacon.
func (b *Beacon) Stop() {
	b.stopOnce.Do(func() { close(b.done) })
}

func (b *Beacon) broadcastLoop(conn net.PacketConn) {
	defer conn.Close()

	ticker := time.NewTicker(BeaconInterval)
	defer ticker.Stop()

	// Send immediately on start, then on tick
	b.send(conn)

	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			b.send(conn)
		}
	}
}

func (b *Beacon) send(conn net.PacketConn) {
	data, err := json.Marshal(b.describe())
	if err != nil {
		log.Printf("[DISCOVERY] Failed to encode beacon: %v", err)
		return
	}

	// Loopback first: 255.255.255.255 is often dropped by the local firewall
	conn.WriteTo(data, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: b.port})
	conn.WriteTo(data, &net.UDPAddr{IP: net.IPv4bcast, Port: b.port})

	for _, ip := range broadcastAddrs() {
		conn.WriteTo(data, &net.UDPAddr{IP: ip, Port: b.port})
	}
}

// broadcastAddrs returns the directed broadcast address of each interface.
func broadcastAddrs() []net.IP {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}

	var out []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagBroadcast == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.To4() == nil {
				continue
			}
			// IP | ~Mask
			ip4 := ipnet.IP.To4()
			broadcast := make(net.IP, 4)
			for i := range broadcast {
				broadcast[i] = ip4[i] | ^ipnet.Mask[len(ipnet.Mask)-4+i]
			}
			out = append(out, broadcast)
		}
	}
	return out
}

// --- Browser ---

type seenPanel struct {
	info     PanelInfo
	lastSeen time.Time
}

// Browser collects beacons from panel servers.
type Browser struct {
	panels map[string]*seenPanel // keyed by Addr
	mu     sync.RWMutex
	conn   *net.UDPConn
	done   chan struct{}
	once   sync.Once
}

// NewBrowser creates a browser. Call Start to begin listening.
func NewBrowser() *Browser {
	return &Browser{
		panels: make(map[string]*seenPanel),
		done:   make(chan struct{}),
	}
}

// Start listens for beacons on addr, usually ":9998".
func (b *Browser) Start(addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", addr, err)
	}
	b.conn, err = net.ListenUDP("udp4", udpAddr)
	if err != nil {
		return fmt.Errorf("listen UDP on %s: %w (is another client browsing?)", addr, err)
	}

	go b.listenLoop()
	return nil
}

// LocalAddr returns the UDP address being listened on.
func (b *Browser) LocalAddr() *net.UDPAddr {
	if b.conn == nil {
		return nil
	}
	return b.conn.LocalAddr().(*net.UDPAddr)
}

// Stop stops the browser.
func (b *Browser) Stop() {
	b.once.Do(func() {
		close(b.done)
		if b.conn != nil {
			b.conn.Close()
		}
	})
}

// Panels returns the panels seen within PanelExpiry, sorted by name.
func (b *Browser) Panels() []PanelInfo {
	return b.panelsAt(time.Now())
}

func (b *Browser) panelsAt(now time.Time) []PanelInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()

	panels := make([]PanelInfo, 0, len(b.panels))
	for _, sp := range b.panels {
		if now.Sub(sp.lastSeen) <= PanelExpiry {
			panels = append(panels, sp.info)
		}
	}
	sort.Slice(panels, func(i, j int) bool {
		if panels[i].Name != panels[j].Name {
			return panels[i].Name < panels[j].Name
		}
		return panels[i].Addr < panels[j].Addr
	})
	return panels
}

// Find waits for the first panel without a controller.
func (b *Browser) Find(ctx context.Context) (PanelInfo, error) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		for _, p := range b.Panels() {
			if !p.Attached {
				return p, nil
			}
		}
		select {
		case <-ctx.Done():
			return PanelInfo{}, fmt.Errorf("%w: %v", ErrNoPanel, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (b *Browser) record(info PanelInfo, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A server on this machine is heard both over loopback and on the LAN.
	// Keep one entry per name and port, under the LAN address.
	for addr, sp := range b.panels {
		if addr == info.Addr || !sameServer(sp.info, info) {
			continue
		}
		if isLoopback(info.Addr) && !isLoopback(addr) {
			lan := info
			lan.Addr = addr
			b.panels[addr] = &seenPanel{info: lan, lastSeen: at}
			return
		}
		if isLoopback(addr) && !isLoopback(info.Addr) {
			delete(b.panels, addr)
		}
	}

	b.panels[info.Addr] = &seenPanel{info: info, lastSeen: at}
	for addr, sp := range b.panels {
		if at.Sub(sp.lastSeen) > PanelExpiry {
			delete(b.panels, addr)
		}
	}
}

func (b *Browser) listenLoop() {
	buf := make([]byte, 4096)
	for {
		n, src, err := b.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-b.done:
				return
			default:
				continue
			}
		}

		var info PanelInfo
		if err := json.Unmarshal(buf[:n], &info); err != nil {
			continue
		}
		addr, ok := resolveAddr(info.Addr, src)
		if !ok {
			continue
		}
		info.Addr = addr
		b.record(info, time.Now())
	}
}

// resolveAddr fills in the sender's IP when a server advertises a
// wildcard listen address such as 0.0.0.0:9999.
func resolveAddr(advertised string, src *net.UDPAddr) (string, bool) {
	host, port, err := net.SplitHostPort(advertised)
	if err != nil || port == "" {
		return "", false
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		if src == nil {
			return "", false
		}
		host = src.IP.String()
	}
	return net.JoinHostPort(host, port), true
}

func sameServer(a, b PanelInfo) bool {
	if a.Name != b.Name {
		return false
	}
	_, portA, errA := net.SplitHostPort(a.Addr)
	_, portB, errB := net.SplitHostPort(b.Addr)
	return errA == nil && errB == nil && portA == portB
}

func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
