// Package domain contains the core entities for the book club analytics pipeline.
package domain

// Member is one book club member. Members with an export file contribute
// ratings through their Goodreads library export; members without one can
// still appear in the manual ratings sheet.
type Member struct {
	Name       string `yaml:"name" json:"name"`
	ExportFile string `yaml:"export_file,omitempty" json:"export_file,omitempty"`
	Active     bool   `yaml:"active" json:"active"`
}

// Roster is the club member registry, loaded from members.yaml.
// Order is significant: it fixes the member column order in every
// pivoted report and output file.
type Roster struct {
	Members []Member `yaml:"members"`
}

// Names returns all member names in roster order.
func (r *Roster) Names() []string {
	names := make([]string, 0, len(r.Members))
	for _, m := range r.Members {
		names = append(names, m.Name)
	}
	return names
}

// ActiveMembers returns only the members currently active in the club.
func (r *Roster) ActiveMembers() []Member {
	active := make([]Member, 0, len(r.Members))
	for _, m := range r.Members {
		if m.Active {
			active = append(active, m)
		}
	}
	return active
}

// ReviewerMapping maps export file names to member names.
// Members without an export file are skipped.
func (r *Roster) ReviewerMapping() map[string]string {
	mapping := make(map[string]string)
	for _, m := range r.Members {
		if m.ExportFile != "" {
			mapping[m.ExportFile] = m.Name
		}
	}
	return mapping
}

// MemberByExport returns the member owning the given export file name.
func (r *Roster) MemberByExport(file string) (Member, bool) {
	for _, m := range r.Members {
		if m.ExportFile == file {
			return m, true
		}
	}
	return Member{}, false
}

// HasMember reports whether a member with the given name is on the roster.
func (r *Roster) HasMember(name string) bool {
	for _, m := range r.Members {
		if m.Name == name {
			return true
		}
	}
	return false
}
