package model

import "testing"

func TestValidAssetStatus(t *testing.T) {
	for _, s := range AssetStatuses {
		if !ValidAssetStatus(s) {
			t.Errorf("ValidAssetStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "onsite", "Retired", "Ready"} {
		if ValidAssetStatus(s) {
			t.Errorf("ValidAssetStatus(%q) = true, want false", s)
		}
	}
}

func TestInServiceStatus(t *testing.T) {
	tests := map[string]bool{
		StatusOnsite:              true,
		StatusWFH:                 true,
		StatusTemporarilyDeployed: true,
		StatusReadyToDeploy:       false,
		StatusBorrowed:            false,
		StatusDefective:           false,
	}
	for status, want := range tests {
		if got := InServiceStatus(status); got != want {
			t.Errorf("InServiceStatus(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestAssetDisplayName(t *testing.T) {
	a := Asset{Tag: "LAP-100"}
	if a.DisplayName() != "LAP-100" {
		t.Errorf("expected tag fallback, got %q", a.DisplayName())
	}
	a.Name = "Finance laptop"
	if a.DisplayName() != "Finance laptop" {
		t.Errorf("expected name, got %q", a.DisplayName())
	}
}
