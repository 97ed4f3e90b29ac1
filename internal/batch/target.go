package batch

import (
	"path/filepath"
	"strings"

	"github.com/ironsheep/deepzoom-tiler/internal/config"
	"github.com/ironsheep/deepzoom-tiler/internal/document"
)

// Target is one pyramid to produce.
type Target struct {
	// Name is the pyramid name, used for the descriptor and tile directory.
	Name string `json:"name"`

	// Dir is the output directory.
	Dir string `json:"dir"`

	// Inputs are the source image, or the pages of a document.
	Inputs []string `json:"inputs"`

	// Job carries the settings the pyramid is cut with.
	Job config.Job `json:"-"`
}

// Targets expands a job into its pyramids.
//
// Outside document mode every input is its own target, named after the job
// when there is exactly one input and after the input file otherwise. In
// document mode the inputs are split into groups of pages_per_pyramid pages,
// each group becoming one target.
func Targets(job config.Job) []Target {
	var targets []Target
	if job.Document.Enabled {
		base := job.Name
		if base == "" && len(job.Inputs) > 0 {
			base = stem(job.Inputs[0])
		}
		groups := document.Group(job.Inputs, job.Document.PagesPerPyramid)
		for i, pages := range groups {
			targets = append(targets, Target{
				Name:   document.GroupName(base, i+1, len(groups)),
				Dir:    job.Output,
				Inputs: pages,
				Job:    job,
			})
		}
		return targets
	}

	for i, in := range job.Inputs {
		name := stem(in)
		if job.Name != "" {
			name = document.GroupName(job.Name, i+1, len(job.Inputs))
		}
		targets = append(targets, Target{
			Name:   name,
			Dir:    job.Output,
			Inputs: []string{in},
			Job:    job,
		})
	}
	return targets
}

// stem returns the file name of path without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DescriptorPath returns where the target's descriptor is written.
func (t Target) DescriptorPath() string {
	return filepath.Join(t.Dir, t.Name+".dzi")
}

// TilesDir returns the target's tile directory.
func (t Target) TilesDir() string {
	return filepath.Join(t.Dir, t.Name+"_files")
}

// ArchivePath returns where the target's archive is written.
func (t Target) ArchivePath() string {
	return filepath.Join(t.Dir, t.Name+".tar.zst")
}

// ChecksumPath returns where the target's checksum file is written.
func (t Target) ChecksumPath() string {
	return filepath.Join(t.Dir, t.Name+".b3sum")
}
