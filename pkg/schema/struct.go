package schema

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ssargent/csvmap/pkg/codec"
)

// TagName is the struct tag read by For. `csv:"name"` renames a field and
// `csv:"-"` excludes it from the text form.
const TagName = "csv"

var (
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})

	// Go type stored in a Row for each base field type
	valueTypes = map[codec.FieldType]reflect.Type{
		codec.TypeText:      reflect.TypeOf(""),
		codec.TypeInteger:   reflect.TypeOf(0),
		codec.TypeFloat64:   reflect.TypeOf(float64(0)),
		codec.TypeFloat32:   reflect.TypeOf(float32(0)),
		codec.TypeDecimal:   decimalType,
		codec.TypeBoolean:   reflect.TypeOf(false),
		codec.TypeCharacter: reflect.TypeOf(rune(0)),
		codec.TypeByte:      reflect.TypeOf(byte(0)),
		codec.TypeTimestamp: timeType,
	}
)

// structField is the cached metadata of one struct field
type structField struct {
	index int
	isPtr bool
	field codec.Field
}

type structInfo struct {
	fields      []structField
	descriptors []codec.Field
}

var (
	// read-copy-update: readers load the map without locking
	structCachePtr atomic.Pointer[map[reflect.Type]*structInfo]
	structCacheMu  sync.Mutex
)

func init() {
	m := make(map[reflect.Type]*structInfo)
	structCachePtr.Store(&m)
}

// StructMapper is a codec.Mapper for a struct type, built by For
type StructMapper[T any] struct {
	info *structInfo
}

// For returns a Mapper for the struct type T. Exported fields are mapped in
// declaration order:
//
//	string → Text          int → Integer        float64 → Float64
//	float32 → Float32      bool → Boolean       rune (int32) → Character
//	byte (uint8) → Byte    time.Time → Timestamp
//	decimal.Decimal → Decimal
//
// A pointer to any of these maps to the nullable variant. Fields of other
// types are mapped to codec.TypeInvalid, which fails deserialization unless
// the field is tagged `csv:"-"`.
func For[T any]() (*StructMapper[T], error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %s is not a struct type", typ)
	}
	return &StructMapper[T]{info: getStructInfo(typ)}, nil
}

// MustFor is like For but panics on error
func MustFor[T any]() *StructMapper[T] {
	m, err := For[T]()
	if err != nil {
		panic(err)
	}
	return m
}

func getStructInfo(typ reflect.Type) *structInfo {
	m := structCachePtr.Load()
	if si, ok := (*m)[typ]; ok {
		return si
	}

	structCacheMu.Lock()
	defer structCacheMu.Unlock()

	m = structCachePtr.Load()
	if si, ok := (*m)[typ]; ok {
		return si
	}

	si := parseStructInfo(typ)

	newMap := make(map[reflect.Type]*structInfo, len(*m)+1)
	maps.Copy(newMap, *m)
	newMap[typ] = si
	structCachePtr.Store(&newMap)

	return si
}

func parseStructInfo(typ reflect.Type) *structInfo {
	si := &structInfo{}
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() || sf.Anonymous {
			continue
		}

		name := sf.Name
		ignore := false
		if tag, ok := sf.Tag.Lookup(TagName); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			switch tagName {
			case "-":
				ignore = true
			case "":
			default:
				name = tagName
			}
		}

		ft, isPtr := fieldTypeOf(sf.Type)
		f := structField{
			index: i,
			isPtr: isPtr,
			field: codec.Field{Name: name, Type: ft, Ignore: ignore},
		}
		si.fields = append(si.fields, f)
		si.descriptors = append(si.descriptors, f.field)
	}
	return si
}

// fieldTypeOf maps a Go field type to its semantic type
func fieldTypeOf(t reflect.Type) (codec.FieldType, bool) {
	isPtr := false
	if t.Kind() == reflect.Ptr {
		isPtr = true
		t = t.Elem()
	}

	var ft codec.FieldType
	switch {
	case t == timeType:
		ft = codec.TypeTimestamp
	case t == decimalType:
		ft = codec.TypeDecimal
	default:
		switch t.Kind() {
		case reflect.String:
			ft = codec.TypeText
		case reflect.Int:
			ft = codec.TypeInteger
		case reflect.Float64:
			ft = codec.TypeFloat64
		case reflect.Float32:
			ft = codec.TypeFloat32
		case reflect.Bool:
			ft = codec.TypeBoolean
		case reflect.Int32:
			ft = codec.TypeCharacter
		case reflect.Uint8:
			ft = codec.TypeByte
		default:
			return codec.TypeInvalid, isPtr
		}
	}

	if isPtr {
		return ft.AsNullable(), true
	}
	return ft, false
}

// Fields returns the descriptor list of T
func (m *StructMapper[T]) Fields() []codec.Field {
	return m.info.descriptors
}

// Row extracts the field values of record. Nil pointers become nil and
// named types are converted to the Go type of their field type.
func (m *StructMapper[T]) Row(record T) codec.Row {
	rv := reflect.ValueOf(record)
	row := make(codec.Row, len(m.info.fields))
	for i, f := range m.info.fields {
		if f.field.Ignore {
			continue
		}
		fv := rv.Field(f.index)
		if f.isPtr {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		if vt, ok := valueTypes[f.field.Type.Base()]; ok && fv.Type() != vt {
			fv = fv.Convert(vt)
		}
		row[i] = fv.Interface()
	}
	return row
}

// Build constructs a T from a fully decoded row. Nil values leave the field
// at its zero value (a nil pointer for nullable fields).
func (m *StructMapper[T]) Build(row codec.Row) (T, error) {
	var out T
	rv := reflect.ValueOf(&out).Elem()

	for i, f := range m.info.fields {
		if f.field.Ignore || i >= len(row) || row[i] == nil {
			continue
		}
		fv := rv.Field(f.index)
		target := fv.Type()
		if f.isPtr {
			target = target.Elem()
		}

		val := reflect.ValueOf(row[i])
		if !val.Type().ConvertibleTo(target) {
			var zero T
			return zero, fmt.Errorf("schema: field %s: cannot assign %T to %s", f.field.Name, row[i], target)
		}
		val = val.Convert(target)

		if f.isPtr {
			ptr := reflect.New(target)
			ptr.Elem().Set(val)
			fv.Set(ptr)
		} else {
			fv.Set(val)
		}
	}
	return out, nil
}
