package gate

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aburizalp/ministry-management/internal"
	rbacDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/rbac"
	"github.com/aburizalp/ministry-management/internal/scope"
)

// PolicyOutcome distinguishes "no catalog rows for the resource" from an
// explicit match or an explicit miss. An incomplete catalog degrades to
// scope-only enforcement instead of locking the system.
type PolicyOutcome string

const (
	PolicyNone    PolicyOutcome = "none"
	PolicyMatched PolicyOutcome = "matched"
	PolicyDenied  PolicyOutcome = "denied"
)

type Decision struct {
	Allowed bool          `json:"allowed"`
	Filter  *EntityFilter `json:"entity_filter,omitempty"`
	Policy  PolicyOutcome `json:"policy"`
}

// PolicyAPI is the gate's read-only view of the permission catalog and
// role bindings.
type PolicyAPI interface {
	// ResourceHasPolicy reports whether any active permission row exists
	// for the resource, regardless of action.
	ResourceHasPolicy(ctx context.Context, resource string) (bool, error)
	// ActivePermissionsFor returns active permission rows matching
	// (resource, action).
	ActivePermissionsFor(ctx context.Context, resource, action string) ([]*rbacDatamodel.Permission, error)
	// RoleGranted reports whether roleID holds a binding to any of the ids.
	RoleGranted(ctx context.Context, roleID int64, permissionIDs []int64) (bool, error)
}

// Gate is the enforcement point every scoped data operation consults. It
// owns no data: the decision is a pure function of the caller's scope
// context and the permission catalog.
type Gate struct {
	policies  PolicyAPI
	logger    *slog.Logger
	decisions *prometheus.CounterVec
}

func New(policies PolicyAPI, logger *slog.Logger) *Gate {
	return &Gate{
		policies: policies,
		logger:   logger,
	}
}

// WithMetrics attaches the decision counter, labelled by resource and
// policy outcome. May be nil when metrics are disabled.
func (g *Gate) WithMetrics(decisions *prometheus.CounterVec) *Gate {
	g.decisions = decisions
	return g
}

func (g *Gate) recordDecision(resource string, outcome PolicyOutcome) {
	if g.decisions != nil {
		g.decisions.WithLabelValues(resource, string(outcome)).Inc()
	}
}

// Authorize decides whether the caller may perform action on resource and
// computes the entity filter the operation must apply. Fine-grained
// permissions are a restriction layer on top of scope filtering: a
// matching permission row never widens the filter, and a defined-but-
// unmatched policy denies even reads the scope filter would allow.
func (g *Gate) Authorize(ctx context.Context, sc *scope.Context, resource, action string) (Decision, error) {
	if sc == nil {
		return Decision{Allowed: false, Policy: PolicyNone}, internal.ErrNoScopeAssigned
	}

	filter, err := filterForScope(sc)
	if err != nil {
		return Decision{Allowed: false, Policy: PolicyNone}, err
	}

	outcome, err := g.evaluatePolicy(ctx, sc, resource, action)
	if err != nil {
		return Decision{Allowed: false, Policy: PolicyNone}, err
	}

	g.recordDecision(resource, outcome)

	if outcome == PolicyDenied {
		g.logger.Warn("access denied by permission policy",
			"user_id", sc.UserID,
			"scope", sc.Level,
			"resource", resource,
			"action", action)
		return Decision{Allowed: false, Policy: outcome}, nil
	}

	return Decision{Allowed: true, Filter: filter, Policy: outcome}, nil
}

// CheckWrite rejects writes whose parent-chain ids fall outside the
// caller's filter. The failure is ScopeViolation, distinct from an
// unauthenticated caller or a missing permission.
func (g *Gate) CheckWrite(ctx context.Context, sc *scope.Context, resource string, refs EntityRefs) error {
	decision, err := g.Authorize(ctx, sc, resource, "write")
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return internal.ErrPermissionDenied
	}
	if !decision.Filter.Permits(refs) {
		g.logger.Warn("write rejected: entity outside caller scope",
			"user_id", sc.UserID,
			"scope", sc.Level,
			"resource", resource)
		return internal.ErrScopeViolation
	}
	return nil
}

// filterForScope implements the decision table. The switch is exhaustive
// over scope levels; an unrecognized level is an error, never an
// unfiltered pass.
func filterForScope(sc *scope.Context) (*EntityFilter, error) {
	switch sc.Level {
	case scope.LevelSuperadmin, scope.LevelNational:
		return nil, nil
	case scope.LevelRegion:
		if sc.Region == nil {
			return nil, internal.ErrScopeEntityNotFound
		}
		return &EntityFilter{RegionID: &sc.Region.ID}, nil
	case scope.LevelUniversity:
		if sc.University == nil {
			return nil, internal.ErrScopeEntityNotFound
		}
		return &EntityFilter{UniversityID: &sc.University.ID}, nil
	case scope.LevelSmallGroup:
		if sc.SmallGroup == nil {
			return nil, internal.ErrScopeEntityNotFound
		}
		return &EntityFilter{SmallGroupID: &sc.SmallGroup.ID}, nil
	case scope.LevelAlumniSmallGroup:
		if sc.AlumniGroup == nil {
			return nil, internal.ErrScopeEntityNotFound
		}
		return &EntityFilter{AlumniGroupID: &sc.AlumniGroup.ID}, nil
	}
	return nil, internal.NewValidationError("unhandled scope level "+string(sc.Level), internal.ErrCodeInvalidScope)
}

func (g *Gate) evaluatePolicy(ctx context.Context, sc *scope.Context, resource, action string) (PolicyOutcome, error) {
	hasPolicy, err := g.policies.ResourceHasPolicy(ctx, resource)
	if err != nil {
		return PolicyNone, internal.NewInternalError("failed to inspect permission catalog", err)
	}
	if !hasPolicy {
		return PolicyNone, nil
	}

	permissions, err := g.policies.ActivePermissionsFor(ctx, resource, action)
	if err != nil {
		return PolicyNone, internal.NewInternalError("failed to load permissions", err)
	}
	if len(permissions) == 0 {
		return PolicyDenied, nil
	}

	if sc.RoleID == nil {
		// Catalog rows exist but the caller holds no named role; absence
		// of an explicit grant is a deny.
		return PolicyDenied, nil
	}

	ids := make([]int64, 0, len(permissions))
	for _, p := range permissions {
		ids = append(ids, p.ID)
	}

	granted, err := g.policies.RoleGranted(ctx, *sc.RoleID, ids)
	if err != nil {
		return PolicyNone, internal.NewInternalError("failed to check role bindings", err)
	}
	if !granted {
		return PolicyDenied, nil
	}
	return PolicyMatched, nil
}
