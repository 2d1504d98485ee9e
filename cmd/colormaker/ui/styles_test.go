package ui

import "testing"

func TestDetectTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	t.Setenv("COLORMAKER_DARK_MODE", "1")
	dark := DetectTheme()
	if !dark.IsDark {
		t.Fatalf("expected dark theme when COLORMAKER_DARK_MODE=1")
	}

	t.Setenv("COLORMAKER_DARK_MODE", "")
	light := DetectTheme()
	if light.IsDark {
		t.Fatalf("expected light theme when COLORMAKER_DARK_MODE is unset")
	}

	t.Setenv("COLORFGBG", "15;0")
	if !DetectTheme().IsDark {
		t.Fatalf("expected dark theme for a black background")
	}
}

func TestBarColor(t *testing.T) {
	if BarColor(0) != RedBar || BarColor(1) != GreenBar || BarColor(2) != BlueBar {
		t.Fatalf("unexpected bar colors")
	}
}
