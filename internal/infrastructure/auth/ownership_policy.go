package auth

import (
	"fmt"
	"log"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/you/staysvc/domain"
	"gorm.io/gorm"
)

// ownershipModel grants an action to the owner of a resource when a policy line allows it
const ownershipModel = `
[request_definition]
r = sub, owner, obj, act

[policy_definition]
p = role, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = p.role == "owner" && r.sub == r.owner && r.obj == p.obj && regexMatch(r.act, p.act)
`

// defaultPolicies are seeded on startup when missing
var defaultPolicies = [][]string{
	{"owner", domain.ResourceListing, "^(update|delete|attach_image)$"},
}

// CasbinOwnershipPolicy implements domain.OwnershipPolicy with a casbin enforcer
type CasbinOwnershipPolicy struct {
	E *casbin.Enforcer
}

// NewOwnershipPolicy builds the enforcer. With a non-nil db the policy lines are persisted
// through the gorm adapter, otherwise they are held in memory.
func NewOwnershipPolicy(db *gorm.DB) (*CasbinOwnershipPolicy, error) {
	m, err := model.NewModelFromString(ownershipModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	var e *casbin.Enforcer
	if db != nil {
		adp, err := gormadapter.NewAdapterByDB(db)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize casbin gorm adapter: %w", err)
		}
		if e, err = casbin.NewEnforcer(m, adp); err != nil {
			return nil, err
		}
		if err := e.LoadPolicy(); err != nil {
			return nil, err
		}
	} else {
		if e, err = casbin.NewEnforcer(m); err != nil {
			return nil, err
		}
	}

	p := &CasbinOwnershipPolicy{E: e}
	if err := p.seed(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *CasbinOwnershipPolicy) seed() error {
	for _, rule := range defaultPolicies {
		added, err := p.E.AddPolicy(rule[0], rule[1], rule[2])
		if err != nil {
			return fmt.Errorf("failed to seed casbin policy %v: %w", rule, err)
		}
		if added {
			log.Printf("casbin: seeded policy %v", rule)
		}
	}
	return nil
}

// Allowed implements domain.OwnershipPolicy
func (p *CasbinOwnershipPolicy) Allowed(subject, owner, resource, action string) (bool, error) {
	if subject == "" {
		return false, nil
	}
	return p.E.Enforce(subject, owner, resource, action)
}

var _ domain.OwnershipPolicy = (*CasbinOwnershipPolicy)(nil)
