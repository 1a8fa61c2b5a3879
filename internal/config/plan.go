package config

import "fmt"

// JobKind selects the exporter a job runs
type JobKind string

const (
	KindEOD              JobKind = "eod"
	KindComposition      JobKind = "composition"
	KindCorporateActions JobKind = "corporate_actions"
)

// Job binds a library to an export policy
type Job struct {
	Name    string  `yaml:"name" validate:"required"`
	Library string  `yaml:"library" validate:"required"`
	Kind    JobKind `yaml:"kind" validate:"required,oneof=eod composition corporate_actions"`
	// Output is the folder of an eod job or the file of a composition job
	Output string `yaml:"output" validate:"required_unless=Kind corporate_actions"`
}

// ExportPlan is the ordered list of jobs the runner can execute
type ExportPlan []Job

// DefaultPlan mirrors the libraries of the Bloomberg mirror
func DefaultPlan() ExportPlan {
	return ExportPlan{
		{Name: "eod", Library: LibraryEOD, Kind: KindEOD, Output: "data"},
		{Name: "eod_unadjusted", Library: LibraryEODUnadjusted, Kind: KindEOD, Output: "data_unadjusted"},
		{Name: "composition", Library: LibraryIndexesMembers, Kind: KindComposition, Output: DefaultCompositionFile},
		{Name: "corporate_actions", Library: LibraryCorporateActions, Kind: KindCorporateActions},
	}
}

// Find returns the job with the given name
func (p ExportPlan) Find(name string) (Job, bool) {
	for _, j := range p {
		if j.Name == name {
			return j, true
		}
	}
	return Job{}, false
}

// Select returns the named jobs in the requested order
func (p ExportPlan) Select(names []string) ([]Job, error) {
	jobs := make([]Job, 0, len(names))
	for _, name := range names {
		job, ok := p.Find(name)
		if !ok {
			return nil, fmt.Errorf("job %q is not in the export plan", name)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Libraries returns the distinct libraries referenced by the plan
func (p ExportPlan) Libraries() []string {
	seen := make(map[string]bool, len(p))
	var libs []string
	for _, j := range p {
		if !seen[j.Library] {
			seen[j.Library] = true
			libs = append(libs, j.Library)
		}
	}
	return libs
}
