package gate

import (
	"gorm.io/gorm"
)

// EntityFilter is the id-based constraint derived from a caller's scope.
// A nil *EntityFilter means unrestricted access; a non-nil filter has
// exactly one id set.
type EntityFilter struct {
	RegionID      *int64 `json:"region_id,omitempty"`
	UniversityID  *int64 `json:"university_id,omitempty"`
	SmallGroupID  *int64 `json:"small_group_id,omitempty"`
	AlumniGroupID *int64 `json:"alumni_group_id,omitempty"`
}

// Scope returns a GORM scope applying the filter as WHERE constraints.
// Usable on any table carrying the hierarchy columns. Nil receiver is a
// no-op so unrestricted decisions compose the same way.
func (f *EntityFilter) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f == nil {
			return db
		}
		if f.RegionID != nil {
			db = db.Where("region_id = ?", *f.RegionID)
		}
		if f.UniversityID != nil {
			db = db.Where("university_id = ?", *f.UniversityID)
		}
		if f.SmallGroupID != nil {
			db = db.Where("small_group_id = ?", *f.SmallGroupID)
		}
		if f.AlumniGroupID != nil {
			db = db.Where("alumni_group_id = ?", *f.AlumniGroupID)
		}
		return db
	}
}

// EntityRefs is the parent-chain of a row being written.
type EntityRefs struct {
	RegionID      *int64
	UniversityID  *int64
	SmallGroupID  *int64
	AlumniGroupID *int64
}

// Permits reports whether a write touching refs stays inside the filter.
// Each constrained id must be present on the row and equal.
func (f *EntityFilter) Permits(refs EntityRefs) bool {
	if f == nil {
		return true
	}
	if f.RegionID != nil && (refs.RegionID == nil || *refs.RegionID != *f.RegionID) {
		return false
	}
	if f.UniversityID != nil && (refs.UniversityID == nil || *refs.UniversityID != *f.UniversityID) {
		return false
	}
	if f.SmallGroupID != nil && (refs.SmallGroupID == nil || *refs.SmallGroupID != *f.SmallGroupID) {
		return false
	}
	if f.AlumniGroupID != nil && (refs.AlumniGroupID == nil || *refs.AlumniGroupID != *f.AlumniGroupID) {
		return false
	}
	return true
}
