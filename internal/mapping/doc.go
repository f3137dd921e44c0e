// Package mapping holds the query configuration surface: document field
// paths, the alias table between record field names and document paths,
// metadata kinds, and the YAML mapping file with its loader and validator.
//
// # Mapping file
//
//	version: "1"
//	index: "logs-{@timestamp|yyyy.MM.dd}"
//	aliases:
//	  artist: name
//	  url: links.href
//	schema:
//	  - artist:chararray
//	  - name: url
//	    type: bag
//	    elem: chararray
//	metadata: [id, score]
//	source_filter: [name, links]
//	missing_index_as_empty: true
//
// # Paths
//
// Paths use '.' between keys and [n] for array indexes: "a.b[2].c".
// A key may start with '@' ("@timestamp"); it is an ordinary document key.
// Source filters may use "*" to match any key.
//
// # Aliases
//
// Record names resolve through the alias table first and then, unless
// identity is disabled, by reading the name itself as a path. Two aliases
// may not share a record name or a path, and may only address nested
// document regions when their record names nest too.
package mapping
