package domain

// Table is the raw content of one parsed attachment.
type Table struct {
	Header  []string
	Records []Record
}

type Record struct {
	Line   int
	Fields []string
}
