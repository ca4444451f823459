package payment

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/backend"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
)

//go:embed plans.yaml
var defaultCatalog []byte

// Grants is what a plan changes on the backend user record.
type Grants struct {
	Role      session.Role `yaml:"role"`
	IsPremium *bool        `yaml:"is_premium"`
}

// Upgrade is the backend request body for g.
func (g Grants) Upgrade() backend.Upgrade {
	return backend.Upgrade{IsPremium: g.IsPremium, Role: string(g.Role)}
}

// Plan is a one-time upgrade offer.
type Plan struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Price    int      `yaml:"price"`
	Period   string   `yaml:"period"`
	Success  string   `yaml:"success"`
	Grants   Grants   `yaml:"grants"`
	Features []string `yaml:"features"`
}

// HeldBy reports whether s already has everything the plan grants.
func (p Plan) HeldBy(s session.Session) bool {
	if !s.HasRole(p.Grants.Role) {
		return false
	}
	if p.Grants.IsPremium != nil && *p.Grants.IsPremium && !s.IsPremium {
		return false
	}
	return true
}

// Catalog is the list of plans offered on the upgrade page.
type Catalog struct {
	Currency string `yaml:"currency"`
	Plans    []Plan `yaml:"plans"`
}

// Plan returns the plan with id.
func (c Catalog) Plan(id string) (Plan, bool) {
	for _, p := range c.Plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if c.Currency == "" {
		return Catalog{}, fmt.Errorf("%w: missing currency", ErrInvalidCatalog)
	}
	if len(c.Plans) == 0 {
		return Catalog{}, fmt.Errorf("%w: no plans", ErrInvalidCatalog)
	}
	seen := make(map[string]bool, len(c.Plans))
	for _, p := range c.Plans {
		switch {
		case p.ID == "":
			return Catalog{}, fmt.Errorf("%w: plan without id", ErrInvalidCatalog)
		case seen[p.ID]:
			return Catalog{}, fmt.Errorf("%w: duplicate plan %q", ErrInvalidCatalog, p.ID)
		case p.Price <= 0:
			return Catalog{}, fmt.Errorf("%w: plan %q has no price", ErrInvalidCatalog, p.ID)
		case p.Grants.Role != session.RolePremium && p.Grants.Role != session.RoleAdmin:
			return Catalog{}, fmt.Errorf("%w: plan %q grants role %q", ErrInvalidCatalog, p.ID, p.Grants.Role)
		}
		seen[p.ID] = true
	}
	return c, nil
}

// DefaultCatalog is the embedded catalog.
func DefaultCatalog() Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}
