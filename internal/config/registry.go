package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// ErrUnknownBank is returned for a bank identifier with no profile.
var ErrUnknownBank = errors.New("unknown bank identifier")

//go:embed banks.yaml
var defaultBanks []byte

type registryFile struct {
	Version string        `yaml:"version"`
	Banks   []profileSpec `yaml:"banks"`
}

// Registry holds the compiled bank profiles. It is built once and only read afterwards.
type Registry struct {
	version  string
	order    []models.BankType
	profiles map[models.BankType]*Profile
}

// DefaultRegistry compiles the profiles shipped with the binary.
func DefaultRegistry() (*Registry, error) {
	return ParseRegistry(defaultBanks)
}

// LoadRegistry reads a profile file from disk. An empty path yields the defaults.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry()
	}
	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read bank profiles %q: %w", path, err)
	}
	return ParseRegistry(data)
}

// ParseRegistry decodes and compiles a YAML profile document.
func ParseRegistry(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode bank profiles: %w", err)
	}
	if len(file.Banks) == 0 {
		return nil, fmt.Errorf("bank profiles document defines no banks")
	}

	reg := &Registry{
		version:  file.Version,
		profiles: make(map[models.BankType]*Profile, len(file.Banks)),
	}
	for _, spec := range file.Banks {
		p, err := spec.compile()
		if err != nil {
			return nil, err
		}
		if _, dup := reg.profiles[p.Bank]; dup {
			return nil, fmt.Errorf("bank %s defined twice", p.Bank)
		}
		reg.profiles[p.Bank] = p
		reg.order = append(reg.order, p.Bank)
	}
	return reg, nil
}

// Version returns the version string of the profile document.
func (r *Registry) Version() string {
	return r.version
}

// Get returns the profile for a bank identifier.
func (r *Registry) Get(bank models.BankType) (*Profile, error) {
	p, ok := r.profiles[models.BankType(strings.ToLower(string(bank)))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBank, bank)
	}
	return p, nil
}

// Profiles returns every profile in document order.
func (r *Registry) Profiles() []*Profile {
	out := make([]*Profile, 0, len(r.order))
	for _, b := range r.order {
		out = append(out, r.profiles[b])
	}
	return out
}
