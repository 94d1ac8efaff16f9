package permission

import (
	"errors"
	"strings"
	"testing"

	"github.com/i474232898/weather-now/internal/device"
)

func snapshot(fine, coarse, rFine, rCoarse bool) device.PermissionSnapshot {
	return device.PermissionSnapshot{
		Granted:       map[device.Permission]bool{device.FineLocation: fine, device.CoarseLocation: coarse},
		ShowRationale: map[device.Permission]bool{device.FineLocation: rFine, device.CoarseLocation: rCoarse},
	}
}

func TestEvaluate(t *testing.T) {
	g := NewGate(nil)

	tests := []struct {
		name   string
		snap   device.PermissionSnapshot
		expect State
	}{
		{"both granted", snapshot(true, true, false, false), GrantedBoth},
		{"granted wins over rationale", snapshot(true, true, true, true), GrantedBoth},
		{"rationale for both", snapshot(false, false, true, true), DeniedShowRationale},
		{"rationale with one granted", snapshot(true, false, true, true), DeniedShowRationale},
		{"rationale for one only", snapshot(false, false, true, false), NotYetRequested},
		{"only fine granted", snapshot(true, false, false, false), NotYetRequested},
		{"nothing", snapshot(false, false, false, false), NotYetRequested},
		{"empty snapshot", device.PermissionSnapshot{}, NotYetRequested},
	}
	for _, tt := range tests {
		if got := g.Evaluate(tt.snap); got != tt.expect {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.expect, got)
		}
	}
}

func TestOnUserResponse(t *testing.T) {
	g := NewGate(nil)

	tests := []struct {
		name   string
		grants map[device.Permission]bool
		expect State
	}{
		{"interrupted", nil, Unknown},
		{"both", map[device.Permission]bool{device.FineLocation: true, device.CoarseLocation: true}, GrantedBoth},
		{"coarse only", map[device.Permission]bool{device.FineLocation: false, device.CoarseLocation: true}, DeniedShowRationale},
		{"none", map[device.Permission]bool{device.FineLocation: false, device.CoarseLocation: false}, DeniedPermanently},
	}
	for _, tt := range tests {
		if got := g.OnUserResponse(tt.grants); got != tt.expect {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.expect, got)
		}
	}
}

func TestNotices(t *testing.T) {
	g := NewGate(nil)

	both := g.Notices(map[device.Permission]bool{device.FineLocation: true, device.CoarseLocation: true})
	if len(both) != 2 || !strings.Contains(both[0], "fine-location") || !strings.Contains(both[1], "coarse-location") {
		t.Fatalf("unexpected notices for full grant: %v", both)
	}

	none := g.Notices(map[device.Permission]bool{device.FineLocation: false, device.CoarseLocation: false})
	if len(none) != 1 || none[0] != PermanentlyDeniedNotice {
		t.Fatalf("unexpected notices for denial: %v", none)
	}

	partial := g.Notices(map[device.Permission]bool{device.FineLocation: true, device.CoarseLocation: false})
	if len(partial) != 2 || partial[1] != DeniedNotice {
		t.Fatalf("unexpected notices for partial grant: %v", partial)
	}
}

type fakeSettings struct {
	opened int
	err    error
}

func (f *fakeSettings) OpenAppSettings() error {
	f.opened++
	return f.err
}

func TestRationaleActions(t *testing.T) {
	settings := &fakeSettings{err: errors.New("activity not found")}
	dismissed := 0
	d := NewGate(settings).Rationale(func() { dismissed++ })

	if d.SettingsLabel != SettingsLabel || d.CancelLabel != CancelLabel || d.Message == "" {
		t.Fatalf("unexpected dialog: %+v", d)
	}

	// A failing settings screen must not panic or dismiss anything.
	d.GoToSettings()
	if settings.opened != 1 || dismissed != 0 {
		t.Fatalf("expected settings opened once without dismissal, got %d/%d", settings.opened, dismissed)
	}

	d.Cancel()
	if dismissed != 1 {
		t.Fatalf("expected dismissal, got %d", dismissed)
	}

	NewGate(nil).Rationale(nil).GoToSettings()
}

type fakeRequester struct {
	perms []device.Permission
	err   error
}

func (f *fakeRequester) RequestPermissions(perms []device.Permission, cb func(map[device.Permission]bool)) error {
	f.perms = perms
	return f.err
}

func TestRequestAsksForBoth(t *testing.T) {
	req := &fakeRequester{}
	if err := NewGate(nil).Request(req, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.perms) != 2 || req.perms[0] != device.FineLocation || req.perms[1] != device.CoarseLocation {
		t.Fatalf("unexpected permissions requested: %v", req.perms)
	}

	req.err = errors.New("no activity")
	if err := NewGate(nil).Request(req, nil); err == nil {
		t.Fatal("expected dispatch error")
	}
}
