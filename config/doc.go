// Package config loads the YAML run configuration of impfit.
//
// A run configuration names the solver, the circuit model and its staged-fit
// class, the initial parameters, the data to process and where to write the
// results:
//
//	solver:
//	    name: least_squares
//	model:
//	    circuit: ColeCole
//	    class: ColeCole
//	    protocol: iterative
//	parameters: cole_cole_input.yaml
//	data:
//	    directory: ./spectra
//	    exclude_ending: _skip.csv
//	output:
//	    path: outfile.yaml
//	    compression: zstd
//
// Parameters may be given inline or as a path to a parameter file. A
// parameter file maps each name to its initial value, bounds and vary flag;
// the order of the names is kept:
//
//	k:
//	    value: 1.5
//	    min: 0
//	    max: inf
//	    vary: true
//
// Load returns DefaultConfig when the file does not exist. IMPFIT_LOG_LEVEL
// and IMPFIT_OUTPUT override the logging level and the output path.
package config
