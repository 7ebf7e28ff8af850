package scope

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aburizalp/ministry-management/internal"
	hierarchyDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/hierarchy"
	userDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/user"
)

// RepositoryAPI loads the scope assignment and dereferences the entity
// chain. Lookups return (nil, nil) when the row does not exist so the
// resolver can distinguish "absent" from a store failure.
type RepositoryAPI interface {
	GetUserRole(ctx context.Context, userID int64) (*userDatamodel.UserRole, error)
	GetRegion(ctx context.Context, id int64) (*hierarchyDatamodel.Region, error)
	GetUniversity(ctx context.Context, id int64) (*hierarchyDatamodel.University, error)
	GetSmallGroup(ctx context.Context, id int64) (*hierarchyDatamodel.SmallGroup, error)
	GetAlumniGroup(ctx context.Context, id int64) (*hierarchyDatamodel.AlumniSmallGroup, error)
}

// CacheAPI is an optional read-through cache for resolved contexts.
type CacheAPI interface {
	Get(ctx context.Context, userID int64) (*Context, error)
	Set(ctx context.Context, sc *Context) error
	Invalidate(ctx context.Context, userID int64) error
}

type Resolver struct {
	repo   RepositoryAPI
	cache  CacheAPI
	logger *slog.Logger

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

// NewResolver creates a scope resolver. cache may be nil.
func NewResolver(repo RepositoryAPI, cache CacheAPI, logger *slog.Logger) *Resolver {
	return &Resolver{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// WithMetrics attaches cache hit/miss counters. Both may be nil when
// metrics are disabled.
func (r *Resolver) WithMetrics(hits, misses prometheus.Counter) *Resolver {
	r.cacheHits = hits
	r.cacheMisses = misses
	return r
}

// Resolve determines the caller's scope level and dereferences the full
// entity chain. A user without an assignment fails with NoScopeAssigned;
// an assignment pointing at a deleted entity fails with
// ScopeEntityNotFound. Neither ever falls back to a broader scope.
func (r *Resolver) Resolve(ctx context.Context, userID int64) (*Context, error) {
	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, userID); err != nil {
			r.logger.Warn("scope cache read failed, resolving from store", "user_id", userID, "error", err)
		} else if cached != nil {
			if r.cacheHits != nil {
				r.cacheHits.Inc()
			}
			return cached, nil
		}
		if r.cacheMisses != nil {
			r.cacheMisses.Inc()
		}
	}

	userRole, err := r.repo.GetUserRole(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load scope assignment", err)
	}
	if userRole == nil {
		return nil, internal.ErrNoScopeAssigned
	}

	sc, err := r.build(ctx, userRole)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, sc); err != nil {
			r.logger.Warn("scope cache write failed", "user_id", userID, "error", err)
		}
	}

	return sc, nil
}

func (r *Resolver) build(ctx context.Context, userRole *userDatamodel.UserRole) (*Context, error) {
	level, err := ParseLevel(userRole.Scope)
	if err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidScope)
	}

	sc := &Context{
		UserID: userRole.UserID,
		Level:  level,
		RoleID: userRole.RoleID,
	}

	switch level {
	case LevelSuperadmin, LevelNational:
		// No entity chain; the level alone signals unrestricted access.
		return sc, nil

	case LevelRegion:
		if userRole.RegionID == nil {
			return nil, internal.NewValidationError("region scope requires a region id", internal.ErrCodeInvalidScope)
		}
		region, err := r.getRegion(ctx, *userRole.RegionID)
		if err != nil {
			return nil, err
		}
		sc.Region = region
		return sc, nil

	case LevelUniversity:
		if userRole.UniversityID == nil {
			return nil, internal.NewValidationError("university scope requires a university id", internal.ErrCodeInvalidScope)
		}
		university, err := r.repo.GetUniversity(ctx, *userRole.UniversityID)
		if err != nil {
			return nil, internal.NewInternalError("failed to load university", err)
		}
		if university == nil {
			return nil, internal.ErrScopeEntityNotFound
		}
		region, err := r.getRegion(ctx, university.RegionID)
		if err != nil {
			return nil, err
		}
		sc.University = &UniversityRef{ID: university.ID, Name: university.Name, RegionID: university.RegionID}
		sc.Region = region
		return sc, nil

	case LevelSmallGroup:
		if userRole.SmallGroupID == nil {
			return nil, internal.NewValidationError("smallgroup scope requires a small group id", internal.ErrCodeInvalidScope)
		}
		smallGroup, err := r.repo.GetSmallGroup(ctx, *userRole.SmallGroupID)
		if err != nil {
			return nil, internal.NewInternalError("failed to load small group", err)
		}
		if smallGroup == nil {
			return nil, internal.ErrScopeEntityNotFound
		}
		university, err := r.repo.GetUniversity(ctx, smallGroup.UniversityID)
		if err != nil {
			return nil, internal.NewInternalError("failed to load university", err)
		}
		if university == nil {
			return nil, internal.ErrScopeEntityNotFound
		}
		if smallGroup.RegionID != university.RegionID {
			r.logger.Warn("small group region diverges from university region",
				"small_group_id", smallGroup.ID,
				"small_group_region_id", smallGroup.RegionID,
				"university_region_id", university.RegionID)
		}
		region, err := r.getRegion(ctx, university.RegionID)
		if err != nil {
			return nil, err
		}
		sc.SmallGroup = &SmallGroupRef{
			ID:           smallGroup.ID,
			Name:         smallGroup.Name,
			UniversityID: smallGroup.UniversityID,
			RegionID:     university.RegionID,
		}
		sc.University = &UniversityRef{ID: university.ID, Name: university.Name, RegionID: university.RegionID}
		sc.Region = region
		return sc, nil

	case LevelAlumniSmallGroup:
		if userRole.AlumniGroupID == nil {
			return nil, internal.NewValidationError("alumnismallgroup scope requires an alumni group id", internal.ErrCodeInvalidScope)
		}
		alumniGroup, err := r.repo.GetAlumniGroup(ctx, *userRole.AlumniGroupID)
		if err != nil {
			return nil, internal.NewInternalError("failed to load alumni group", err)
		}
		if alumniGroup == nil {
			return nil, internal.ErrScopeEntityNotFound
		}
		region, err := r.getRegion(ctx, alumniGroup.RegionID)
		if err != nil {
			return nil, err
		}
		sc.AlumniGroup = &AlumniGroupRef{ID: alumniGroup.ID, Name: alumniGroup.Name, RegionID: alumniGroup.RegionID}
		sc.Region = region
		return sc, nil
	}

	return nil, internal.NewValidationError("unhandled scope level "+string(level), internal.ErrCodeInvalidScope)
}

func (r *Resolver) getRegion(ctx context.Context, id int64) (*RegionRef, error) {
	region, err := r.repo.GetRegion(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load region", err)
	}
	if region == nil {
		return nil, internal.ErrScopeEntityNotFound
	}
	return &RegionRef{ID: region.ID, Name: region.Name}, nil
}

// Invalidate drops any cached context for the user. Called after scope
// reassignment.
func (r *Resolver) Invalidate(ctx context.Context, userID int64) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, userID); err != nil {
		r.logger.Warn("scope cache invalidation failed", "user_id", userID, "error", err)
	}
}
