package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// InputReader loads the text to analyze from a file.
type InputReader interface {
	Read(path string) (string, error)
}

// InputReaderFunc is a function that implements InputReader
type InputReaderFunc func(path string) (string, error)

func (f InputReaderFunc) Read(path string) (string, error) {
	return f(path)
}

// inputReaders is the registry of available input formats
var inputReaders = map[string]InputReader{}

// RegisterInputReader registers a reader under the given format name
func RegisterInputReader(name string, r InputReader) {
	inputReaders[name] = r
}

// GetInputReader returns the reader for the given format
func GetInputReader(format string) (InputReader, error) {
	r, ok := inputReaders[format]
	if !ok {
		return nil, fmt.Errorf("unknown input format: %s (available: %v)", format, AvailableInputFormats())
	}
	return r, nil
}

// AvailableInputFormats returns the registered format names, sorted
func AvailableInputFormats() []string {
	var formats []string
	for name := range inputReaders {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}

// IsKnownInputFormat returns true if the name is a registered format
func IsKnownInputFormat(name string) bool {
	_, ok := inputReaders[name]
	return ok
}

// ParseSourceArg splits an optional format prefix off a source argument.
// Example: "xlsx:export.bin" → ("xlsx", "export.bin")
// Example: "notes.txt" → ("", "notes.txt")
// Example: "C:\path\file.xlsx" → ("", "C:\path\file.xlsx") // Windows path
func ParseSourceArg(arg string) (format, path string) {
	idx := strings.Index(arg, ":")
	if idx == -1 {
		return "", arg
	}
	prefix := arg[:idx]
	if IsKnownInputFormat(prefix) {
		return prefix, arg[idx+1:]
	}
	return "", arg
}

// ReadInput loads text from a source argument. "-" reads stdin; otherwise
// the format comes from the prefix or, failing that, the file extension.
func ReadInput(arg string, stdin io.Reader) (string, error) {
	format, path := ParseSourceArg(arg)
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	if format == "" {
		format = "text"
		if strings.EqualFold(filepath.Ext(path), ".xlsx") {
			format = "xlsx"
		}
	}
	r, err := GetInputReader(format)
	if err != nil {
		return "", err
	}
	return r.Read(path)
}

// ReadTextFile reads a plain text file.
func ReadTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), nil
}

// ReadXLSXText flattens every sheet of a workbook into text, one line per
// non-empty row with cells joined by " | ". Bank exports keep enough of
// their column structure this way for extraction.
func ReadXLSXText(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("no sheets found in file")
	}

	var b strings.Builder
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("reading sheet %s: %w", sheet, err)
		}
		for _, row := range rows {
			var cells []string
			for _, cell := range row {
				if cell = strings.TrimSpace(cell); cell != "" {
					cells = append(cells, cell)
				}
			}
			if len(cells) == 0 {
				continue
			}
			b.WriteString(strings.Join(cells, " | "))
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

func init() {
	RegisterInputReader("text", InputReaderFunc(ReadTextFile))
	RegisterInputReader("xlsx", InputReaderFunc(ReadXLSXText))
}
