package flatten

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.EnablePictureCaching {
		t.Error("EnablePictureCaching = false, want true")
	}
	if cfg.DefaultFontRenderMode != FontRenderSubpixel {
		t.Errorf("DefaultFontRenderMode = %v, want subpixel", cfg.DefaultFontRenderMode)
	}
	if cfg.ChasePrimitive.Enabled() {
		t.Error("ChasePrimitive enabled by default")
	}
}

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithPictureCaching(false),
		WithFontRenderMode(FontRenderMono),
		WithBackgroundColor(Black),
		WithLenientAssertions(true),
		WithChaseID(7),
	)
	if cfg.EnablePictureCaching {
		t.Error("WithPictureCaching(false) not applied")
	}
	if cfg.DefaultFontRenderMode != FontRenderMono {
		t.Errorf("DefaultFontRenderMode = %v, want mono", cfg.DefaultFontRenderMode)
	}
	if cfg.BackgroundColor != Black {
		t.Errorf("BackgroundColor = %v, want black", cfg.BackgroundColor)
	}
	if !cfg.LenientAssertions {
		t.Error("WithLenientAssertions(true) not applied")
	}
	if !cfg.ChasePrimitive.Matches(7, Rect{}) || cfg.ChasePrimitive.Matches(8, Rect{}) {
		t.Error("WithChaseID(7) does not match exactly id 7")
	}
}

func TestChaseRect(t *testing.T) {
	r := RectFromXYWH(10, 20, 30, 40)
	cfg := NewConfig(WithChaseRect(r))
	if !cfg.ChasePrimitive.Matches(0, r) {
		t.Error("chase rect does not match its own rect")
	}
	if cfg.ChasePrimitive.Matches(0, r.Translate(Vector{X: 1})) {
		t.Error("chase rect matches a different rect")
	}
}

func TestParseConfig(t *testing.T) {
	data := []byte(`
enable_picture_caching = false
default_font_render_mode = "alpha"
background_color = "#000000ff"
lenient_assertions = true

[chase_primitive]
rect = [1, 2, 3, 4]
`)
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.EnablePictureCaching {
		t.Error("enable_picture_caching not decoded")
	}
	if cfg.DefaultFontRenderMode != FontRenderAlpha {
		t.Errorf("DefaultFontRenderMode = %v, want alpha", cfg.DefaultFontRenderMode)
	}
	if cfg.BackgroundColor != Black {
		t.Errorf("BackgroundColor = %v, want black", cfg.BackgroundColor)
	}
	if !cfg.ChasePrimitive.Matches(0, RectFromXYWH(1, 2, 3, 4)) {
		t.Error("chase_primitive.rect not decoded")
	}
}

func TestParseConfigRejectsUnknown(t *testing.T) {
	if _, err := ParseConfig([]byte("no_such_key = 1\n")); err == nil {
		t.Error("ParseConfig accepted an unknown key")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flatten.toml")
	if err := os.WriteFile(path, []byte("enable_picture_caching = false\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.EnablePictureCaching {
		t.Error("LoadConfig did not apply file contents")
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadConfig(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestContractError(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(*ContractError)
		if !ok {
			t.Fatalf("recovered %T, want *ContractError", r)
		}
		if !errors.Is(err, ErrContract) {
			t.Error("ContractError does not unwrap to ErrContract")
		}
		if err.Error() != "flatten: pop: stack empty" {
			t.Errorf("Error() = %q", err.Error())
		}
	}()
	Faultf("pop", "stack %s", "empty")
}
