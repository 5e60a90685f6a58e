package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/fasttext/pkg/fasttext/args"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preset.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadPresetAppliesOnlySetFields(t *testing.T) {
	path := writeYAML(t, "name: fast\ndim: 50\nepoch: 3\n")
	p, err := LoadPreset(path)
	if err != nil {
		t.Fatalf("LoadPreset: %v", err)
	}

	base := args.Default()
	out, err := p.Apply(base)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Dim != 50 {
		t.Errorf("Dim = %d, want 50", out.Dim)
	}
	if out.Epoch != 3 {
		t.Errorf("Epoch = %d, want 3", out.Epoch)
	}
	if out.LR != base.LR {
		t.Errorf("LR = %v, want unchanged base value %v", out.LR, base.LR)
	}
}

func TestLoadPresetAppliesLoss(t *testing.T) {
	path := writeYAML(t, "name: ova-preset\nloss: ova\n")
	p, err := LoadPreset(path)
	if err != nil {
		t.Fatalf("LoadPreset: %v", err)
	}
	out, err := p.Apply(args.Default())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Loss != args.LossOVA {
		t.Errorf("Loss = %v, want LossOVA", out.Loss)
	}
}

func TestLoadPresetRejectsUnknownLoss(t *testing.T) {
	path := writeYAML(t, "name: bad\nloss: quantum\n")
	p, err := LoadPreset(path)
	if err != nil {
		t.Fatalf("LoadPreset: %v", err)
	}
	if _, err := p.Apply(args.Default()); err == nil {
		t.Error("Apply with unknown loss: want error, got nil")
	}
}

func TestLoadPresetMissingFileErrors(t *testing.T) {
	if _, err := LoadPreset(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadPreset on missing file: want error, got nil")
	}
}

func TestLoadSearchSpacePinsSubset(t *testing.T) {
	path := writeYAML(t, "epoch: 10\nlr: 0.1\n")
	s, err := LoadSearchSpace(path)
	if err != nil {
		t.Fatalf("LoadSearchSpace: %v", err)
	}
	if s.PinEpoch == nil || *s.PinEpoch != 10 {
		t.Errorf("PinEpoch = %v, want 10", s.PinEpoch)
	}
	if s.PinLR == nil || *s.PinLR != 0.1 {
		t.Errorf("PinLR = %v, want 0.1", s.PinLR)
	}
	if s.PinDim != nil {
		t.Errorf("PinDim = %v, want nil (not set in YAML)", s.PinDim)
	}
}
