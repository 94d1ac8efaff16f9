package device

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-now/internal/weather"
)

func TestHostRequestPermissionsPersistsGrants(t *testing.T) {
	h := NewHost(HostState{GrantOnRequest: true}, nil)

	done := make(chan map[Permission]bool, 1)
	if err := h.RequestPermissions(LocationPermissions, func(g map[Permission]bool) { done <- g }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case grants := <-done:
		if !grants[FineLocation] || !grants[CoarseLocation] {
			t.Fatalf("expected both permissions granted, got %v", grants)
		}
	case <-time.After(time.Second):
		t.Fatal("permission callback never fired")
	}

	snap := h.PermissionSnapshot()
	if !snap.Granted[FineLocation] || !snap.Granted[CoarseLocation] {
		t.Fatalf("expected grants to persist, got %+v", snap)
	}
}

func TestHostDeniedAsksForRationale(t *testing.T) {
	h := NewHost(HostState{}, nil)
	h.ApplyGrants(map[Permission]bool{FineLocation: false, CoarseLocation: false})

	snap := h.PermissionSnapshot()
	if snap.Granted[FineLocation] || !snap.ShowRationale[FineLocation] || !snap.ShowRationale[CoarseLocation] {
		t.Fatalf("unexpected snapshot after denial: %+v", snap)
	}
}

func TestHostLastKnownPosition(t *testing.T) {
	h := NewHost(HostState{}, nil)
	pos, err := h.LastKnownPosition(context.Background())
	if err != nil || pos != nil {
		t.Fatalf("expected no position, got %v, %v", pos, err)
	}

	h = NewHost(HostState{Position: &weather.Coordinates{Lat: 21.0, Lon: 105.8}}, nil)
	pos, err = h.LastKnownPosition(context.Background())
	if err != nil || pos == nil || pos.Lat != 21.0 {
		t.Fatalf("expected configured position, got %v, %v", pos, err)
	}
}

func TestHostOpenAppSettings(t *testing.T) {
	if err := NewHost(HostState{}, nil).OpenAppSettings(); !errors.Is(err, ErrSettingsUnavailable) {
		t.Fatalf("expected ErrSettingsUnavailable, got %v", err)
	}
	if err := NewHost(HostState{SettingsURL: "app-settings:weather-now"}, nil).OpenAppSettings(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGeocodedPositionResolvesOnce(t *testing.T) {
	calls := 0
	g := &GeocodedPosition{
		City:    "Hanoi",
		Country: "VN",
		geocode: func(a geocoder.Address) (geocoder.Location, error) {
			calls++
			if a.City != "Hanoi" {
				t.Errorf("unexpected city %q", a.City)
			}
			return geocoder.Location{Latitude: 21.0, Longitude: 105.8}, nil
		},
	}

	for i := 0; i < 3; i++ {
		pos, err := g.LastKnownPosition(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pos == nil || pos.Lon != 105.8 {
			t.Fatalf("unexpected position %v", pos)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single geocoding call, got %d", calls)
	}
}

func TestGeocodedPositionWithoutCity(t *testing.T) {
	g := &GeocodedPosition{geocode: func(geocoder.Address) (geocoder.Location, error) {
		t.Fatal("geocoder should not be called")
		return geocoder.Location{}, nil
	}}
	pos, err := g.LastKnownPosition(context.Background())
	if err != nil || pos != nil {
		t.Fatalf("expected no position, got %v, %v", pos, err)
	}
}

func TestTCPReachability(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()

	r := &TCPReachability{Addr: addr, Timeout: time.Second}
	if !r.NetworkAvailable(context.Background()) {
		t.Fatal("expected reachable listener")
	}

	_ = ln.Close()
	if r.NetworkAvailable(context.Background()) {
		t.Fatal("expected closed listener to be unreachable")
	}
}

func TestNewTCPReachabilityPorts(t *testing.T) {
	r, err := NewTCPReachability("https://api.openweathermap.org/data/2.5/weather", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Addr != "api.openweathermap.org:443" {
		t.Fatalf("unexpected addr %q", r.Addr)
	}
	r, _ = NewTCPReachability("http://localhost:8081/x", 0)
	if r.Addr != "localhost:8081" {
		t.Fatalf("unexpected addr %q", r.Addr)
	}
}
