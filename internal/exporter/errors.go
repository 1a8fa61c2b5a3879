package exporter

import "errors"

var (
	// ErrMissingColumn means a dataset lacks a column the export needs
	ErrMissingColumn = errors.New("missing column")
	// ErrIO means the output could not be created or written
	ErrIO = errors.New("output error")
	// ErrMalformedDataset means a column is not aligned with the dataset index
	ErrMalformedDataset = errors.New("malformed dataset")
)
