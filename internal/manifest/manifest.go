// Package manifest records what a sweep ran with: a run id, the host it ran
// on, the solver and corpus, and every combination, written as sweep.yaml in
// the output root.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
	"gopkg.in/yaml.v3"
)

// FileName is the manifest's name inside the output root.
const FileName = "sweep.yaml"

// SysInfo saves the basic system information.
type SysInfo struct {
	Hostname string `yaml:"hostname,omitempty"`
	Platform string `yaml:"platform,omitempty"`
	CPU      string `yaml:"cpu,omitempty"`
	Cores    int    `yaml:"cores,omitempty"`
	RAM      string `yaml:"ram,omitempty"`
}

// Parameter is one swept parameter and its normalized candidates.
type Parameter struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

// Manifest describes one sweep execution.
type Manifest struct {
	RunID        string      `yaml:"run_id"`
	StartedAt    time.Time   `yaml:"started_at"`
	Solver       string      `yaml:"solver"`
	Timeout      string      `yaml:"timeout,omitempty"`
	Corpus       string      `yaml:"corpus"`
	Extension    string      `yaml:"extension"`
	Workers      int         `yaml:"workers"`
	Instances    int         `yaml:"instances"`
	System       SysInfo     `yaml:"system"`
	Parameters   []Parameter `yaml:"parameters"`
	Combinations []string    `yaml:"combinations"`
}

// NewRunID returns a fresh random run id.
func NewRunID() string {
	return uuid.NewString()
}

// CollectSysInfo gathers host facts. Every probe is best effort; a missing
// fact is left empty.
func CollectSysInfo() SysInfo {
	var s SysInfo
	if h, err := host.Info(); err == nil && h != nil {
		s.Hostname = h.Hostname
		s.Platform = h.Platform
		if h.PlatformVersion != "" {
			s.Platform += " " + h.PlatformVersion
		}
	}
	if c, err := cpu.Info(); err == nil && len(c) > 0 {
		s.CPU = c[0].ModelName
	}
	if n, err := cpu.Counts(true); err == nil {
		s.Cores = n
	}
	if vm, err := mem.VirtualMemory(); err == nil && vm != nil {
		s.RAM = fmt.Sprintf("%d GB", vm.Total/1024/1024/1024)
	}
	return s
}

// Write stores m as dir/sweep.yaml.
func (m *Manifest) Write(dir string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// Read loads dir/sweep.yaml.
func Read(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, nil
}
