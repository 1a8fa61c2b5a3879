// Package config provides configuration loading for symexport.
//
// # Configuration Sources
//
// Configuration is layered in increasing order of precedence:
//
//	1. Default values (Default)
//	2. A YAML file: $SYMEXPORT_CONFIG, ./config.yaml or ./configs/config.yaml
//	3. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern SYMEXPORT_<SECTION>_<FIELD>:
//
//	SYMEXPORT_SOURCE_DRIVER=sqlite
//	SYMEXPORT_SOURCE_PATH=/var/lib/arctic.db
//	SYMEXPORT_EXPORT_JOBS=eod,composition
//	SYMEXPORT_LOGGING_LEVEL=debug
//
// The export plan itself can only be set from the YAML file:
//
//	export:
//	  jobs: [eod, composition]
//	  plan:
//	    - {name: eod, library: Bloomberg.EOD, kind: eod, output: data}
//	    - {name: composition, library: Bloomberg.Indexes_Members, kind: composition, output: composition.csv}
//
// # Validation
//
// LoadFile validates the merged configuration with struct tags
// (go-playground/validator) and checks that every selected job exists in
// the plan.
package config
