// Package checksum proves that a loaded table matches its input file.
//
// A checksum set is the row count plus the sum of every numeric column. The
// expected set is computed from the records read from the file; the actual
// set is computed by the store with COUNT(*) and SUM(col) after the load.
//
// # Comparison
//
// Integer metrics (row_count and sums of integer columns) must match
// exactly. Real-valued sums match when they differ by no more than an
// absolute tolerance (tourload.DefaultTolerance unless configured). Every
// metric is compared; a mismatch never stops the others from being checked.
//
// # Example Usage
//
//	expected, _ := checksum.ComputeExpected(schema.Passengers, records)
//	actual, err := checksum.ComputeActual(ctx, conn, schema.Passengers)
//	if err != nil {
//	    return err
//	}
//	result := checksum.Compare(expected, actual, tourload.DefaultTolerance)
//	for _, m := range result.Mismatches() {
//	    fmt.Println(m.Name)
//	}
package checksum
