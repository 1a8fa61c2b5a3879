package exporter

import (
	"context"

	"symexport/internal/infrastructure"
)

// CorporateActionsExporter is the export of the corporate actions library.
// It has no output yet and always succeeds.
type CorporateActionsExporter struct{}

// NewCorporateActionsExporter creates the corporate actions exporter
func NewCorporateActionsExporter() *CorporateActionsExporter {
	return &CorporateActionsExporter{}
}

// ExportCorporateActions does nothing and returns nil
func (c *CorporateActionsExporter) ExportCorporateActions(ctx context.Context, library string) error {
	infrastructure.GetLogger().DebugContext(ctx, "Corporate actions export has no output",
		"library", library)
	return nil
}
