// Package capabilities implements the host attribute policy: which
// element attributes the reconciler may write to the host tree.
package capabilities

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// ValueAttribute is the attribute every policy starts with. It is the one
// attribute that also supports reference binding.
const ValueAttribute = "value"

const (
	// ProjectFile is looked up in the project directory.
	ProjectFile = ".ikopolicy.json"
	// UserFile is looked up under the user's home directory.
	UserFile = ".iko/policy.json"
)

// Policy defines which attributes may be set on host nodes.
type Policy struct {
	Allowed map[string]bool
}

// PolicyFile represents the JSON structure of a policy file.
type PolicyFile struct {
	Allow []string `json:"allow,omitempty"`
	Deny  []string `json:"deny,omitempty"`
}

// IsAllowed checks whether an attribute may be written.
func (p *Policy) IsAllowed(attr string) bool {
	if p == nil {
		return false
	}
	if p.Allowed == nil {
		return true
	}
	return p.Allowed[attr]
}

// Names lists the allowed attributes in order, or nil when everything is
// allowed.
func (p *Policy) Names() []string {
	if p == nil || p.Allowed == nil {
		return nil
	}
	names := make([]string, 0, len(p.Allowed))
	for name := range p.Allowed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadPolicy loads the attribute policy from project and user config files.
// Policy precedence: project (.ikopolicy.json) → user (~/.iko/policy.json)
// → default. It returns the path the policy came from, or "" for the
// default. A file that exists but cannot be parsed is an error.
func LoadPolicy(projectDir string) (*Policy, string, error) {
	candidates := []string{filepath.Join(projectDir, ProjectFile)}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, UserFile))
	}

	for _, path := range candidates {
		pf, err := loadPolicyFile(path)
		if os.IsNotExist(errors.Cause(err)) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		return buildPolicy(pf), path, nil
	}
	return Default(), "", nil
}

func loadPolicyFile(path string) (*PolicyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read policy")
	}
	var pf PolicyFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, errors.Wrapf(err, "parse policy %s", path)
	}
	return &pf, nil
}

func buildPolicy(pf *PolicyFile) *Policy {
	p := Default()

	// Add all allowed attributes
	for _, attr := range pf.Allow {
		p.Allowed[attr] = true
	}

	// Deny overrides allow
	for _, attr := range pf.Deny {
		delete(p.Allowed, attr)
	}

	return p
}

// Default returns the policy allowing only `value`.
func Default() *Policy {
	return &Policy{Allowed: map[string]bool{ValueAttribute: true}}
}

// AllowAll returns a policy that permits every attribute.
func AllowAll() *Policy {
	return &Policy{Allowed: nil} // nil signals "allow all"
}

// Allow returns the default policy extended with attrs.
func Allow(attrs ...string) *Policy {
	return buildPolicy(&PolicyFile{Allow: attrs})
}
