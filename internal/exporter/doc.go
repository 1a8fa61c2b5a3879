// Package exporter writes datasets read from a source to CSV files.
//
// EODExporter writes every symbol of a library to <ticker>.csv inside an
// existing folder, where the ticker is the part of the symbol before its
// first space. CompositionExporter writes the member list of an index with
// the members reduced to tickers. CorporateActionsExporter is a placeholder
// that succeeds without output.
//
// All exporters share a CSVWriter. A written file starts with a header made
// of the index name and the column names, and every row starts with its index
// value:
//
//	csvWriter := exporter.NewCSVWriter(false)
//	eod := exporter.NewEODExporter(reader, csvWriter, metrics)
//	err := eod.ExportLibrary(ctx, "Bloomberg.EOD", "data")
//
// Failures wrap ErrIO, ErrMissingColumn or ErrMalformedDataset, or the
// source sentinels, and can be tested with errors.Is.
package exporter
