package hierarchy

import (
	"time"

	hierarchyDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/hierarchy"
)

type Region struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type University struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	RegionID  int64     `json:"region_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SmallGroup struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	UniversityID int64     `json:"university_id"`
	RegionID     int64     `json:"region_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AlumniSmallGroup struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	RegionID  int64     `json:"region_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Selection is a partial pick down the hierarchy, as held by a cascading
// form. A child selection is only ever valid under its current parent.
type Selection struct {
	RegionID      *int64 `json:"region_id,omitempty"`
	UniversityID  *int64 `json:"university_id,omitempty"`
	SmallGroupID  *int64 `json:"small_group_id,omitempty"`
	AlumniGroupID *int64 `json:"alumni_group_id,omitempty"`
}

// ApplyRegion replaces the region selection. Child selections survive only
// when they are still present in the option sets valid under the new
// region; anything else is cleared so no dangling child persists.
func (s Selection) ApplyRegion(regionID int64, universities []*University, alumniGroups []*AlumniSmallGroup) Selection {
	next := Selection{RegionID: &regionID}

	if s.UniversityID != nil {
		for _, u := range universities {
			if u.ID == *s.UniversityID {
				next.UniversityID = s.UniversityID
				// the small group only survives with its university
				next.SmallGroupID = s.SmallGroupID
				break
			}
		}
	}
	if s.AlumniGroupID != nil {
		for _, g := range alumniGroups {
			if g.ID == *s.AlumniGroupID {
				next.AlumniGroupID = s.AlumniGroupID
				break
			}
		}
	}
	return next
}

// ApplyUniversity replaces the university selection, keeping the small
// group only if it belongs to the newly selected university.
func (s Selection) ApplyUniversity(universityID int64, smallGroups []*SmallGroup) Selection {
	next := s
	next.UniversityID = &universityID
	next.SmallGroupID = nil

	if s.SmallGroupID != nil {
		for _, sg := range smallGroups {
			if sg.ID == *s.SmallGroupID {
				next.SmallGroupID = s.SmallGroupID
				break
			}
		}
	}
	return next
}

func RegionFromDataModel(r *hierarchyDatamodel.Region) *Region {
	return &Region{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func UniversityFromDataModel(u *hierarchyDatamodel.University) *University {
	return &University{
		ID:        u.ID,
		Name:      u.Name,
		RegionID:  u.RegionID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func SmallGroupFromDataModel(sg *hierarchyDatamodel.SmallGroup) *SmallGroup {
	return &SmallGroup{
		ID:           sg.ID,
		Name:         sg.Name,
		UniversityID: sg.UniversityID,
		RegionID:     sg.RegionID,
		CreatedAt:    sg.CreatedAt,
		UpdatedAt:    sg.UpdatedAt,
	}
}

func AlumniGroupFromDataModel(g *hierarchyDatamodel.AlumniSmallGroup) *AlumniSmallGroup {
	return &AlumniSmallGroup{
		ID:        g.ID,
		Name:      g.Name,
		RegionID:  g.RegionID,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}
