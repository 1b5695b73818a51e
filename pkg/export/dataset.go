package export

// Dataset defines tabular export content. Rows are keyed by header name;
// columns a row does not carry render empty.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Record flattens a row into header order for positional writers.
func (d Dataset) Record(row map[string]string) []string {
	record := make([]string, len(d.Headers))
	for i, header := range d.Headers {
		record[i] = row[header]
	}
	return record
}
