package middleware

import (
	"net/http"

	"taskhub/models"
)

type Resource string

const (
	ResourceTeam      Resource = "team"
	ResourceProject   Resource = "project"
	ResourceTask      Resource = "task"
	ResourceDashboard Resource = "dashboard"
	ResourceUser      Resource = "user"
)

type Operation string

const (
	OpCreate     Operation = "create"
	OpRead       Operation = "read"
	OpUpdate     Operation = "update"
	OpDelete     Operation = "delete"
	OpAssignRole Operation = "assign-role"
)

// rule describes who may perform an operation. A public rule admits
// anonymous callers; otherwise an empty role list admits any signed-in user.
type rule struct {
	public bool
	roles  []models.Role
}

var managers = []models.Role{models.RoleOwner, models.RoleAdmin}

func defaultRules(publicReads bool) map[Resource]map[Operation]rule {
	resourceRules := func() map[Operation]rule {
		return map[Operation]rule{
			OpCreate: {roles: managers},
			OpUpdate: {roles: managers},
			OpDelete: {roles: managers},
			OpRead:   {public: publicReads},
		}
	}
	return map[Resource]map[Operation]rule{
		ResourceTeam:      resourceRules(),
		ResourceProject:   resourceRules(),
		ResourceTask:      resourceRules(),
		ResourceDashboard: {OpRead: {}},
		ResourceUser: {
			OpRead:       {},
			OpAssignRole: {roles: []models.Role{models.RoleOwner}},
		},
	}
}

// Policy is the single table deciding which roles may perform each
// operation on each resource.
type Policy struct {
	auth  *Authenticator
	rules map[Resource]map[Operation]rule
}

func NewPolicy(auth *Authenticator, publicReads bool) *Policy {
	return &Policy{
		auth:  auth,
		rules: defaultRules(publicReads),
	}
}

// Allowed reports whether role may perform op on resource.
func (p *Policy) Allowed(resource Resource, op Operation, role models.Role) bool {
	r, ok := p.rules[resource][op]
	if !ok {
		return false
	}
	if len(r.roles) == 0 {
		return true
	}
	for _, allowed := range r.roles {
		if role == allowed {
			return true
		}
	}
	return false
}

// Authorize returns the middleware guarding op on resource. Operations
// missing from the table are restricted to the owner.
func (p *Policy) Authorize(resource Resource, op Operation) func(http.Handler) http.Handler {
	r, ok := p.rules[resource][op]
	if !ok {
		r = rule{roles: []models.Role{models.RoleOwner}}
	}
	if r.public {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return p.auth.RequireAuth(RequireRole(r.roles...)(next))
	}
}
