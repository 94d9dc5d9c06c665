// Package discovery walks a scenarios directory looking for *.json
// scenario files, parsing each far enough to report its metadata.
// Grounded on the teacher's pkg/utils.DiscoverSimulations
// (filepath.Walk over cmd/ looking for simulation.yaml), adapted from
// a build-tree walk over Go-registered simulations to a data-directory
// walk over JSON scenario files, since this engine's "simulations" are
// scenario files rather than compiled-in Go types.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/orbitalarena/alldomainsim/internal/scenario"
)

// Info is one discovered scenario's path plus its parsed metadata.
type Info struct {
	Path        string
	Name        string
	Description string
	Version     string
}

// Scenarios walks dir for *.json files and parses each as a scenario,
// skipping (and reporting via the returned warnings slice) any file
// that fails to parse rather than aborting the whole scan, matching
// the teacher's "log and continue" discovery behavior.
func Scenarios(dir string) ([]Info, []string, error) {
	var infos []Info
	var warnings []string

	err := filepath.Walk(dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		s, err := scenario.Load(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", path, err))
			return nil
		}
		infos = append(infos, Info{
			Path:        path,
			Name:        s.Metadata.Name,
			Description: s.Metadata.Description,
			Version:     s.Metadata.Version,
		})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("discovery: scanning %s: %w", dir, err)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, warnings, nil
}
