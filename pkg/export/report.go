package export

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Field is one labelled value printed above the table.
type Field struct {
	Label string
	Value string
}

// Report is a rendered-once document: a title block, summary fields and one table.
type Report struct {
	Title    string
	Subtitle string
	Summary  []Field
	Table    Dataset
}

func (d Dataset) row(i int) []string {
	values := make([]string, len(d.Headers))
	for j, header := range d.Headers {
		values[j] = d.Rows[i][header]
	}
	return values
}
