package parsers

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Parser turns an uploaded match sheet into rows.
type Parser interface {
	Parse(data []byte) ([]MatchRow, error)
}

// ParserFactory picks a Parser by file name.
type ParserFactory interface {
	GetParser(filename string) (Parser, error)
}

// Factory maps upload extensions to parsers. A name without an extension is
// treated as a spreadsheet, which is what the organizer export produces.
type Factory struct {
	byExt map[string]func() Parser
}

func NewFactory() *Factory {
	return &Factory{byExt: map[string]func() Parser{
		".csv":  func() Parser { return NewCSVParser() },
		".xlsx": func() Parser { return NewXLSXParser() },
		"":      func() Parser { return NewXLSXParser() },
	}}
}

func (f *Factory) GetParser(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	build, ok := f.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported match sheet %q: expected .csv or .xlsx", ext)
	}
	return build(), nil
}
