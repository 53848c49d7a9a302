package codec

// Row holds the values of one record, one slot per field descriptor in
// descriptor order. Slots of ignored fields are not read on encode and are
// left nil on decode.
type Row []any

// FallbackHook is called when a field's text could not be parsed and the
// field resolved to its default (or nil). It never changes the decoded value.
type FallbackHook func(field Field, text string)

// EncodeRecord returns the texts of the non-ignored fields of row, in
// descriptor order. Missing trailing slots encode as NullText.
func EncodeRecord(fields []Field, row Row) []string {
	texts := make([]string, 0, ActiveCount(fields))
	for i, f := range fields {
		if f.Ignore {
			continue
		}
		var v any
		if i < len(row) {
			v = row[i]
		}
		texts = append(texts, EncodeField(v, f.Type))
	}
	return texts
}

// DecodeRecord builds a Row from the texts of one line. It fails with
// *FieldCountMismatchError when the number of texts differs from the number
// of non-ignored fields, and with *UnsupportedFieldTypeError when a
// non-ignored field has an unsupported type. No row is returned on error.
func DecodeRecord(fields []Field, texts []string) (Row, error) {
	return decodeRecord(fields, texts, 0, nil)
}

func decodeRecord(fields []Field, texts []string, line int, hook FallbackHook) (Row, error) {
	if expected := ActiveCount(fields); len(texts) != expected {
		return nil, &FieldCountMismatchError{Line: line, Expected: expected, Actual: len(texts)}
	}

	row := make(Row, len(fields))
	next := 0
	for i, f := range fields {
		if f.Ignore {
			continue
		}
		text := texts[next]
		next++

		v, fellBack, err := decodeField(text, f.Type)
		if err != nil {
			return nil, &UnsupportedFieldTypeError{Field: f.Name, Type: f.Type}
		}
		if fellBack && hook != nil {
			hook(f, text)
		}
		row[i] = v
	}
	return row, nil
}
