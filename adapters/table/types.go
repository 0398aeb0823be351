package table

// RawTable is a header row plus string cells, as read from any source format
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// FileType is the on-disk layout of a table
type FileType string

const (
	Whitespace FileType = "whitespace"
	CSV        FileType = "csv"
	XLSX       FileType = "xlsx"
)
