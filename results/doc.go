// Package results stores the fitted parameter values of a run.
//
// A Document maps record identifiers ("<source>_<index>") to an Entry. In a
// single-model run an entry holds the fitted values directly; in a sequential
// run it holds one value map per model:
//
//	cells.csv_0:
//	    e: 80.1
//	    k: 1.52
//	cells.csv_1:
//	    model1:
//	        e: 79.9
//	    model2:
//	        em: 11.2
//
// Documents are written once, after every record has been processed. Without
// compression the file is plain YAML. With a codec from the compress package
// the YAML is wrapped in a small archive:
//
//	offset  size  field
//	0       4     magic "IMPF"
//	4       1     version
//	5       1     compression type
//	6       2     flags (bit 0: big-endian header)
//	8       8     xxHash64 of the YAML payload
//	16      8     YAML payload length
//	24      ...   compressed payload
//
// ReadFile accepts both forms and verifies the checksum of archives.
package results
