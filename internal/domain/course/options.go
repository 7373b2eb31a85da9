package course

import "time"

// Filter selects course records. Zero-valued fields are ignored.
type Filter struct {
	ID        *int64
	Name      *string
	ExcludeID *int64
	// ActiveOnly restricts the match to records without DeletedAt.
	ActiveOnly bool
}

// ByID matches the course with the given id, deleted or not.
func ByID(id int64) Filter {
	return Filter{ID: &id}
}

// ActiveByID matches the course with the given id only while it is not deleted.
func ActiveByID(id int64) Filter {
	return Filter{ID: &id, ActiveOnly: true}
}

// ActiveByName matches a non-deleted course holding name.
func ActiveByName(name string) Filter {
	return Filter{Name: &name, ActiveOnly: true}
}

// Excluding returns a copy of f that skips the course with the given id.
func (f Filter) Excluding(id int64) Filter {
	f.ExcludeID = &id
	return f
}

// Mutation lists the fields a conditional update sets. Nil fields are left unchanged.
type Mutation struct {
	Name      *string
	Status    *Status
	UpdatedAt *time.Time
	DeletedAt *time.Time
}

// ListOptions provides paging for listing courses.
type ListOptions struct {
	Offset int
	Limit  int
}
