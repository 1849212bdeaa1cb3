package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestOverlayDefaults(t *testing.T) {
	reg := NewOverlayRegistry()

	if !reg.IsEnabled(OverlayLeaderboard) || !reg.IsEnabled(OverlayGeneration) {
		t.Error("leaderboard and generation panels should start enabled")
	}
	if reg.IsEnabled(OverlayRails) {
		t.Error("rails should start disabled")
	}

	want := []string{"track", "cars", "panels"}
	cats := reg.Categories()
	if len(cats) != len(want) {
		t.Fatalf("categories: got %v, want %v", cats, want)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Errorf("category %d: got %s, want %s", i, cats[i], want[i])
		}
	}

	seen := map[int32]OverlayID{}
	for _, d := range reg.All() {
		if prev, ok := seen[d.Key]; ok {
			t.Errorf("key %s bound to both %s and %s", d.KeyLabel, prev, d.ID)
		}
		seen[d.Key] = d.ID
	}
}

func TestOverlayHandleKeyPress(t *testing.T) {
	reg := NewOverlayRegistry()

	id, on, ok := reg.HandleKeyPress(rl.KeyB)
	if !ok || id != OverlayRails || !on {
		t.Errorf("first press: got %s/%v/%v", id, on, ok)
	}
	if _, on, _ := reg.HandleKeyPress(rl.KeyB); on {
		t.Error("second press should disable")
	}
	if _, _, ok := reg.HandleKeyPress(rl.KeyZ); ok {
		t.Error("unbound key should not toggle anything")
	}
}

func TestOverlayExclusive(t *testing.T) {
	reg := NewOverlayRegistry()
	reg.Register(OverlayDescriptor{ID: "a", Category: "test", Exclusive: []OverlayID{"b"}})
	reg.Register(OverlayDescriptor{ID: "b", Category: "test", Exclusive: []OverlayID{"a"}})

	reg.SetEnabled("a", true)
	reg.Toggle("b")
	if reg.IsEnabled("a") || !reg.IsEnabled("b") {
		t.Errorf("exclusive toggle: a=%v b=%v", reg.IsEnabled("a"), reg.IsEnabled("b"))
	}

	enabled := reg.EnabledOverlays()
	last := enabled[len(enabled)-1]
	if last != "b" {
		t.Errorf("EnabledOverlays should keep registration order, last got %s", last)
	}
}
