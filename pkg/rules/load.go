package rules

import (
	"fmt"
	"os"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

// fileSpec is the on-disk shape of a rules file: a YAML mapping whose
// "rules" key holds a list with one entry per rule, mirroring spec.md
// §3's Routing Rule fields.
type fileSpec struct {
	Rules []ruleSpec `yaml:"rules"`
}

type ruleSpec struct {
	Name string `yaml:"name"`

	SourceSystem string `yaml:"source_system"`
	SourceSlot   int    `yaml:"source_slot"`
	SourceTGID   uint32 `yaml:"source_tgid"`

	DestSystem string `yaml:"dest_system"`
	DestSlot   int    `yaml:"dest_slot"`
	DestTGID   uint32 `yaml:"dest_tgid"`

	Active     bool `yaml:"active"`
	Routable   bool `yaml:"routable"`
	Affiliated bool `yaml:"affiliated"`

	IgnoredPeers []uint32 `yaml:"ignored_peers"`

	TriggerOn  []uint32 `yaml:"trigger_on"`
	TriggerOff []uint32 `yaml:"trigger_off"`

	// TimeoutType is one of "", "on", "off" (case-sensitive, lowercase
	// per the file convention); TimeoutSeconds is the duration applied
	// on reload once that type is set.
	TimeoutType    string `yaml:"timeout_type"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LoadFile parses a rules YAML file into the Rule list Engine.Reload
// expects (spec.md §4.6). It does not itself call Reload — the
// caller decides when to publish (on startup and on the reload
// ticker).
func LoadFile(path string) ([]*Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}

	var spec fileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("rules: parse %s: %w", path, err)
	}

	out := make([]*Rule, 0, len(spec.Rules))
	for _, rs := range spec.Rules {
		r := &Rule{
			Name:            rs.Name,
			SourceSystem:    rs.SourceSystem,
			SourceSlot:      rs.SourceSlot,
			SourceTGID:      rs.SourceTGID,
			DestSystem:      rs.DestSystem,
			DestSlot:        rs.DestSlot,
			DestTGID:        rs.DestTGID,
			Active:          rs.Active,
			Routable:        rs.Routable,
			Affiliated:      rs.Affiliated,
			IgnoredPeers:    rs.IgnoredPeers,
			TriggerOnTGIDs:  rs.TriggerOn,
			TriggerOffTGIDs: rs.TriggerOff,
			TimeoutValue:    time.Duration(rs.TimeoutSeconds) * time.Second,
		}
		switch rs.TimeoutType {
		case "on":
			r.TimeoutType = TimeoutON
		case "off":
			r.TimeoutType = TimeoutOFF
		default:
			r.TimeoutType = TimeoutNone
		}
		out = append(out, r)
	}
	return out, nil
}
