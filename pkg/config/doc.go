// Package config loads optional sd-rg defaults.
//
//	            +-------------+
//	            |   Config    |
//	            | (Defaults)  |
//	            +------+------+
//	                   |
//	      +-----------+-----------+
//	      |                       |
//	+-----+-----+           +----+----+
//	|   YAML    |           |   HCL   |
//	| Parser    |           | Parser  |
//	+-----------+           +---------+
//
// 🎯 Purpose:
// - Choose the search engine binary
// - Cap the number of preview lines
// - Protect files from in-place rewrites with doublestar globs
// - Turn on debug diagnostics
//
// 🔄 Flow:
// 1. SD_RG_CONFIG names a file, otherwise .sd-rg.{yaml,yml,hcl} in the working directory is used
// 2. The parser is chosen by extension
// 3. Environment overrides (SD_RG_ENGINE, SD_RG_DEBUG) are applied
// 4. Defaults are filled in and values validated
//
// No file at all is not an error: Default() is used.
//
// 🔍 Example (.sd-rg.yaml):
//
//	engine: /opt/homebrew/bin/rg
//	preview_lines: 40
//	protect:
//	  - "**/*.lock"
//	  - "vendor/**"
//
// 🔍 Example (.sd-rg.hcl):
//
//	preview_lines = 40
//	protect       = ["**/*.lock", "vendor/**"]
package config
