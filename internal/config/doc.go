// Package config loads deepzoom job files.
//
// A job file is YAML located by the --config flag or the DEEPZOOM_CONFIG
// environment variable; there is no automatic discovery. It has three keys:
//
//	concurrency: 2
//	defaults:
//	  tilesize: 256
//	  overlap: 4
//	  format: jpg
//	jobs:
//	  - inputs: [scans/map.tif]
//	    output: out
//	    name: map
//	    overlap: 1
//
// Each job starts from the defaults and overrides only the keys it sets.
// Unknown keys are rejected. ${VAR} references in paths are expanded from
// the environment.
package config
