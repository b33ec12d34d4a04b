package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"cloudclock/pkg/clock"
)

// Config is the process table shared by every participant. The position of
// a process in Processes is its slot in every vector timestamp.
type Config struct {
	Processes []string `yaml:"processes"`
	Self      string   `yaml:"self"`
}

// ParseProcesses parses a comma-separated list of process IDs:
// "p0,p1,p2"
func ParseProcesses(processesStr string) ([]string, error) {
	if processesStr == "" {
		return []string{}, nil
	}

	parts := strings.Split(processesStr, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		id := strings.TrimSpace(part)
		if id == "" {
			return nil, fmt.Errorf("empty process ID in %q", processesStr)
		}
		ids = append(ids, id)
	}

	if err := checkUnique(ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Load decodes a YAML process table:
//
//	processes: [p0, p1, p2]
//	self: p1
func Load(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	for i, id := range cfg.Processes {
		cfg.Processes[i] = strings.TrimSpace(id)
		if cfg.Processes[i] == "" {
			return nil, fmt.Errorf("empty process ID at position %d", i)
		}
	}
	if err := checkUnique(cfg.Processes); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads a YAML process table from path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Validate checks that Self is listed in the table.
func (c *Config) Validate() error {
	if c.Self == "" {
		return fmt.Errorf("self process ID is required")
	}
	if _, err := c.Index(c.Self); err != nil {
		return err
	}
	return nil
}

// Len returns the number of processes, i.e. the vector length.
func (c *Config) Len() int {
	return len(c.Processes)
}

// Index returns the slot assigned to process id.
func (c *Config) Index(id string) (int, error) {
	for i, p := range c.Processes {
		if p == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("unknown process: %s", id)
}

// SelfIndex returns the slot of the local process.
func (c *Config) SelfIndex() (int, error) {
	return c.Index(c.Self)
}

// NewTimestamp returns an all-zero vector timestamp sized to the table.
func (c *Config) NewTimestamp() clock.VectorTimestamp {
	// Len is never negative, New cannot fail
	vt, _ := clock.New(c.Len())
	return vt
}

func checkUnique(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate process ID: %s", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
