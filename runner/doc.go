// Package runner processes every record of a dataset with the staged fit
// controller and collects the fitted values.
//
// Run fits one model per record. RunSequential fits two models per record and
// hands a list of fitted values from the first to the second, where they are
// fixed. A hand-off name missing from the second model aborts the whole run.
//
// Results are buffered in a results.Document and written once, after the last
// record. A failed or cancelled run writes nothing.
package runner
