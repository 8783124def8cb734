package ingest

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bookclubapp/bookclub-server/internal/domain"
	"github.com/bookclubapp/bookclub-server/internal/errors"
)

// LoadRoster reads the member registry from a YAML file.
//
// The registry is hand-maintained and fixes both who counts as a club member
// and the member column order of every pivoted report:
//
//	members:
//	  - name: Thirsa
//	    export_file: goodreads_library_export-thirsa.csv
//	    active: true
//	  - name: Laurynas
//	    active: true
func LoadRoster(path string) (*domain.Roster, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- registry path comes from config
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeBadSource, "read member registry %s", path)
	}

	var roster domain.Roster
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, errors.Wrapf(err, errors.CodeBadSource, "parse member registry %s", path)
	}

	if err := validateRoster(&roster); err != nil {
		return nil, err
	}

	return &roster, nil
}

// validateRoster rejects registries that would corrupt the pivot: duplicate
// names collide as report columns, and duplicate export files would credit
// one file's ratings to two members.
func validateRoster(r *domain.Roster) error {
	if len(r.Members) == 0 {
		return errors.Validation("member registry has no members")
	}

	names := make(map[string]bool, len(r.Members))
	exports := make(map[string]bool, len(r.Members))
	for _, m := range r.Members {
		if m.Name == "" {
			return errors.Validation("member registry contains a member without a name")
		}
		if names[m.Name] {
			return errors.Validationf("duplicate member name %q in registry", m.Name)
		}
		names[m.Name] = true

		if m.ExportFile != "" {
			if exports[m.ExportFile] {
				return errors.Validationf("export file %q assigned to more than one member", m.ExportFile)
			}
			exports[m.ExportFile] = true
		}
	}

	return nil
}
