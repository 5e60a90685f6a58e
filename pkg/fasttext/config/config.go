// Package config loads reusable training/autotune presets from YAML files,
// the same os.ReadFile + yaml.Unmarshal shape the teacher repo uses for its
// taxonomy and stoplist configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/fasttext/pkg/fasttext/args"
)

// Preset is a named, YAML-loadable set of training overrides. A nil field
// is unset and Apply leaves the base Args' value in place; Preset only
// overrides the fields the YAML file explicitly sets.
type Preset struct {
	Name string `yaml:"name"`

	LR         *float64 `yaml:"lr"`
	Dim        *int     `yaml:"dim"`
	WS         *int     `yaml:"ws"`
	Epoch      *int     `yaml:"epoch"`
	MinCount   *int     `yaml:"minCount"`
	Neg        *int     `yaml:"neg"`
	WordNgrams *int     `yaml:"wordNgrams"`
	Loss       *string  `yaml:"loss"`
	Bucket     *int     `yaml:"bucket"`
	Minn       *int     `yaml:"minn"`
	Maxn       *int     `yaml:"maxn"`
	Thread     *int     `yaml:"thread"`
	Seed       *int     `yaml:"seed"`
}

// LoadPreset loads a single preset from a YAML file.
func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Apply overlays the preset's explicitly-set fields onto base and returns
// the merged Args.
func (p *Preset) Apply(base args.Args) (args.Args, error) {
	out := base
	if p.LR != nil {
		out.LR = *p.LR
	}
	if p.Dim != nil {
		out.Dim = *p.Dim
	}
	if p.WS != nil {
		out.WS = *p.WS
	}
	if p.Epoch != nil {
		out.Epoch = *p.Epoch
	}
	if p.MinCount != nil {
		out.MinCount = *p.MinCount
	}
	if p.Neg != nil {
		out.Neg = *p.Neg
	}
	if p.WordNgrams != nil {
		out.WordNgrams = *p.WordNgrams
	}
	if p.Bucket != nil {
		out.Bucket = *p.Bucket
	}
	if p.Minn != nil {
		out.Minn = *p.Minn
	}
	if p.Maxn != nil {
		out.Maxn = *p.Maxn
	}
	if p.Thread != nil {
		out.Thread = *p.Thread
	}
	if p.Seed != nil {
		out.Seed = *p.Seed
	}
	if p.Loss != nil {
		l, err := parseLoss(*p.Loss)
		if err != nil {
			return args.Args{}, err
		}
		out.Loss = l
	}
	return out, nil
}

func parseLoss(s string) (args.LossName, error) {
	switch s {
	case "hs":
		return args.LossHS, nil
	case "ns":
		return args.LossNS, nil
	case "softmax":
		return args.LossSoftmax, nil
	case "ova":
		return args.LossOVA, nil
	default:
		return 0, fmt.Errorf("config: unknown loss %q", s)
	}
}

// SearchSpace is the autotune hyper-parameter search-space override file:
// a subset of spec §4.5's sampled parameters that the operator wants
// pinned (manually overridden, never sampled).
type SearchSpace struct {
	PinEpoch      *int     `yaml:"epoch"`
	PinLR         *float64 `yaml:"lr"`
	PinDim        *int     `yaml:"dim"`
	PinWordNgrams *int     `yaml:"wordNgrams"`
	PinBucket     *int     `yaml:"bucket"`
}

// LoadSearchSpace loads autotune pin overrides from a YAML file.
func LoadSearchSpace(path string) (*SearchSpace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s SearchSpace
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
