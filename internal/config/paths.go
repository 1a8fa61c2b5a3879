package config

import (
	"path/filepath"
)

// Paths resolves relative job outputs against a base directory
type Paths struct {
	BaseDir string
}

// NewPaths creates a resolver; an empty base means the working directory
func NewPaths(baseDir string) *Paths {
	return &Paths{BaseDir: baseDir}
}

// Resolve returns p unchanged when absolute, otherwise joined to BaseDir
func (p *Paths) Resolve(path string) string {
	if filepath.IsAbs(path) || p == nil || p.BaseDir == "" {
		return path
	}
	return filepath.Join(p.BaseDir, path)
}

// ResolveJob returns a copy of job with its output resolved
func (p *Paths) ResolveJob(job Job) Job {
	if job.Output != "" {
		job.Output = p.Resolve(job.Output)
	}
	return job
}
