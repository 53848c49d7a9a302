package codec

import (
	"runtime"
	"strings"
)

// DefaultSeparator is the field separator used when none is configured
const DefaultSeparator = ";"

// PlatformNewline is the line terminator of the host platform
var PlatformNewline = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()

// Codec converts between rows and the text table form: one line per row,
// fields joined by a separator. A Codec is immutable and safe for concurrent
// use.
type Codec struct {
	separator string
	newline   string
	hook      FallbackHook
}

// Option configures a Codec
type Option func(*Codec)

// WithSeparator sets the field separator. An empty separator is ignored.
func WithSeparator(sep string) Option {
	return func(c *Codec) {
		if sep != "" {
			c.separator = sep
		}
	}
}

// WithNewline sets the line terminator. An empty value is ignored.
func WithNewline(nl string) Option {
	return func(c *Codec) {
		if nl != "" {
			c.newline = nl
		}
	}
}

// WithFallbackHook registers a hook observing per-field parse fallbacks
func WithFallbackHook(hook FallbackHook) Option {
	return func(c *Codec) {
		c.hook = hook
	}
}

// New creates a codec using DefaultSeparator and PlatformNewline unless
// overridden by opts
func New(opts ...Option) *Codec {
	c := &Codec{
		separator: DefaultSeparator,
		newline:   PlatformNewline,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Separator returns the configured field separator
func (c *Codec) Separator() string {
	return c.separator
}

// Newline returns the configured line terminator
func (c *Codec) Newline() string {
	return c.newline
}

// EncodeLine encodes one row as a single line without terminator
func (c *Codec) EncodeLine(fields []Field, row Row) string {
	return strings.Join(EncodeRecord(fields, row), c.separator)
}

// DecodeLine decodes a single line (without terminator) into a row
func (c *Codec) DecodeLine(fields []Field, line string) (Row, error) {
	return decodeRecord(fields, strings.Split(line, c.separator), 0, c.hook)
}

// SerializeRows encodes rows as a text table. Lines are joined, not
// terminated, by the newline; an empty input yields an empty string.
func (c *Codec) SerializeRows(fields []Field, rows []Row) string {
	if len(rows) == 0 {
		return ""
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = c.EncodeLine(fields, row)
	}
	return strings.Join(lines, c.newline)
}

// DeserializeRows decodes a text table into rows, preserving line order.
//
// Decoding stops at the first line with a wrong field count or a field of
// unsupported type and returns no rows at all. A trailing newline produces a
// final empty line which is subject to the same field count check.
func (c *Codec) DeserializeRows(fields []Field, text string) ([]Row, error) {
	if text == "" {
		return []Row{}, nil
	}

	lines := strings.Split(text, c.newline)
	rows := make([]Row, 0, len(lines))
	for i, line := range lines {
		row, err := decodeRecord(fields, strings.Split(line, c.separator), i+1, c.hook)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
