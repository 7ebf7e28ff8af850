package scope

import (
	"fmt"
)

// Level is the organizational tier a user's data access is bounded to.
// Every switch over Level must handle all six values and fail on anything
// else; new tiers surface as errors instead of silently unfiltered access.
type Level string

const (
	LevelSuperadmin       Level = "superadmin"
	LevelNational         Level = "national"
	LevelRegion           Level = "region"
	LevelUniversity       Level = "university"
	LevelSmallGroup       Level = "smallgroup"
	LevelAlumniSmallGroup Level = "alumnismallgroup"
)

func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelSuperadmin, LevelNational, LevelRegion, LevelUniversity, LevelSmallGroup, LevelAlumniSmallGroup:
		return Level(s), nil
	}
	return "", fmt.Errorf("unknown scope level %q", s)
}

func (l Level) String() string { return string(l) }

// Unrestricted reports whether the level carries no entity filter.
func (l Level) Unrestricted() bool {
	return l == LevelSuperadmin || l == LevelNational
}

type RegionRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type UniversityRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	RegionID int64  `json:"region_id"`
}

type SmallGroupRef struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	UniversityID int64  `json:"university_id"`
	RegionID     int64  `json:"region_id"`
}

type AlumniGroupRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	RegionID int64  `json:"region_id"`
}

// Context is the resolved scope of a caller: the level plus the
// dereferenced entity chain. Entity refs below the caller's level are nil
// and omitted from JSON, which callers use to decide which form fields
// apply. A smallgroup context carries small group, university and region;
// a university context carries university and region only; the alumni
// track carries alumni group and region and never a university.
type Context struct {
	UserID      int64           `json:"user_id"`
	Level       Level           `json:"scope"`
	RoleID      *int64          `json:"role_id,omitempty"`
	Region      *RegionRef      `json:"region,omitempty"`
	University  *UniversityRef  `json:"university,omitempty"`
	SmallGroup  *SmallGroupRef  `json:"small_group,omitempty"`
	AlumniGroup *AlumniGroupRef `json:"alumni_group,omitempty"`
}

func (c *Context) Unrestricted() bool {
	return c.Level.Unrestricted()
}

// EntityIDs returns the ids of the caller's own chain for display and
// form pre-population. Unset levels yield nil entries.
func (c *Context) EntityIDs() (regionID, universityID, smallGroupID, alumniGroupID *int64) {
	if c.Region != nil {
		regionID = &c.Region.ID
	}
	if c.University != nil {
		universityID = &c.University.ID
	}
	if c.SmallGroup != nil {
		smallGroupID = &c.SmallGroup.ID
	}
	if c.AlumniGroup != nil {
		alumniGroupID = &c.AlumniGroup.ID
	}
	return
}
