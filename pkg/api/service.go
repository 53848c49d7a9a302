package api

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/ssargent/csvmap/pkg/codec"
	"github.com/ssargent/csvmap/pkg/logging"
	"github.com/ssargent/csvmap/pkg/query"
	"github.com/ssargent/csvmap/pkg/schema"
)

var (
	// ErrSchemaNotFound is returned for names missing from the registry
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrInvalidRecord is returned when a record value does not fit its field
	ErrInvalidRecord = errors.New("invalid record")
)

// RecordService maps records of registered schemas to and from text tables
// and keeps archived lines in an IArchive
type RecordService struct {
	archive  IArchive
	registry *schema.Registry
	opts     []codec.Option
	newline  string
	metrics  *Metrics
	logger   *slog.Logger
}

// NewRecordService creates a record service. archive may be nil when only
// serialization is needed.
func NewRecordService(archive IArchive, config ServiceConfig) (*RecordService, error) {
	registry, err := schema.NewRegistry(config.Schemas...)
	if err != nil {
		return nil, fmt.Errorf("failed to register schemas: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &RecordService{
		archive:  archive,
		registry: registry,
		opts:     slices.Clone(config.Codec),
		newline:  codec.New(config.Codec...).Newline(),
		metrics:  config.Metrics,
		logger:   logger,
	}, nil
}

// Schemas returns the registered definitions sorted by name
func (s *RecordService) Schemas() []schema.Definition {
	names := s.registry.Names()
	defs := make([]schema.Definition, 0, len(names))
	for _, name := range names {
		def, _ := s.registry.Lookup(name)
		defs = append(defs, def)
	}
	return defs
}

// Definition returns the definition registered under name
func (s *RecordService) Definition(name string) (schema.Definition, error) {
	def, ok := s.registry.Lookup(name)
	if !ok {
		return schema.Definition{}, fmt.Errorf("%w: %s", ErrSchemaNotFound, name)
	}
	return def, nil
}

// table builds the typed table for a schema. Field fallbacks are counted and
// logged at debug level.
func (s *RecordService) table(def schema.Definition) (*codec.Table[schema.Record], *schema.RecordMapper) {
	mapper := schema.NewRecordMapper(def)
	hook := func(field codec.Field, text string) {
		s.metrics.RecordFallback(def.Name, field.Type)
		s.logger.Debug("field value fell back", "schema", def.Name, "field", field.Name, "type", field.Type.String(), "text", text)
	}
	opts := append(slices.Clone(s.opts), codec.WithFallbackHook(hook))
	return codec.NewTable[schema.Record](mapper, opts...), mapper
}

// Serialize coerces records to their field types and encodes them as a
// text table. The caller's records are not modified.
func (s *RecordService) Serialize(name string, records []schema.Record) (string, error) {
	def, err := s.Definition(name)
	if err != nil {
		return "", err
	}

	start := time.Now()
	table, mapper := s.table(def)
	coerced, err := s.coerce(name, mapper, records, start)
	if err != nil {
		return "", err
	}

	text := table.Serialize(coerced)
	s.metrics.RecordCodecOperation("serialize", name, true, len(records), time.Since(start))
	return text, nil
}

// SerializeToFile coerces records and writes their text table to path
func (s *RecordService) SerializeToFile(name string, records []schema.Record, path string) error {
	def, err := s.Definition(name)
	if err != nil {
		return err
	}

	start := time.Now()
	table, mapper := s.table(def)
	coerced, err := s.coerce(name, mapper, records, start)
	if err != nil {
		return err
	}

	if err := table.SerializeToFile(path, coerced); err != nil {
		s.metrics.RecordCodecOperation("serialize", name, false, 0, time.Since(start))
		return err
	}
	s.metrics.RecordCodecOperation("serialize", name, true, len(records), time.Since(start))
	return nil
}

func (s *RecordService) coerce(name string, mapper *schema.RecordMapper, records []schema.Record, start time.Time) ([]schema.Record, error) {
	coerced := make([]schema.Record, len(records))
	for i, rec := range records {
		out, err := mapper.CoerceRecord(rec)
		if err != nil {
			s.metrics.RecordCodecOperation("serialize", name, false, 0, time.Since(start))
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidRecord, i+1, err)
		}
		coerced[i] = out
	}
	return coerced, nil
}

// Deserialize decodes a text table into records. A fatal codec error aborts
// the whole table.
func (s *RecordService) Deserialize(name, text string) ([]schema.Record, error) {
	return s.deserialize(name, func(table *codec.Table[schema.Record]) ([]schema.Record, error) {
		return table.Deserialize(text)
	})
}

// DeserializeFile reads the table file at path exactly as written and
// decodes it into records
func (s *RecordService) DeserializeFile(name, path string) ([]schema.Record, error) {
	return s.deserialize(name, func(table *codec.Table[schema.Record]) ([]schema.Record, error) {
		return table.DeserializeFromFile(path)
	})
}

func (s *RecordService) deserialize(name string, decode func(*codec.Table[schema.Record]) ([]schema.Record, error)) ([]schema.Record, error) {
	def, err := s.Definition(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	table, _ := s.table(def)
	records, err := decode(table)
	if err != nil {
		s.metrics.RecordCodecOperation("deserialize", name, false, 0, time.Since(start))
		s.logger.Warn("deserialize failed", "schema", name, "error", err)
		return nil, err
	}
	s.metrics.RecordCodecOperation("deserialize", name, true, len(records), time.Since(start))
	return records, nil
}

// JSONRecords converts decoded records of schema name to JSON friendly maps
func (s *RecordService) JSONRecords(name string, records []schema.Record) ([]map[string]any, error) {
	def, err := s.Definition(name)
	if err != nil {
		return nil, err
	}
	mapper := schema.NewRecordMapper(def)
	out := make([]map[string]any, len(records))
	for i, rec := range records {
		out[i] = mapper.JSONRecord(rec)
	}
	return out, nil
}

// Import validates a text table and archives each record as its canonical
// line. Nothing is archived when any line fails.
func (s *RecordService) Import(name, text string) ([]ksuid.KSUID, error) {
	if err := s.requireArchive(); err != nil {
		return nil, err
	}
	records, err := s.Deserialize(name, text)
	if err != nil {
		return nil, err
	}
	return s.archiveRecords(name, records)
}

// ImportFile validates the table file at path and archives its records
func (s *RecordService) ImportFile(name, path string) ([]ksuid.KSUID, error) {
	if err := s.requireArchive(); err != nil {
		return nil, err
	}
	records, err := s.DeserializeFile(name, path)
	if err != nil {
		return nil, err
	}
	return s.archiveRecords(name, records)
}

func (s *RecordService) archiveRecords(name string, records []schema.Record) ([]ksuid.KSUID, error) {
	def, _ := s.Definition(name)
	table, mapper := s.table(def)
	lines := make([]string, len(records))
	for i, rec := range records {
		lines[i] = table.Codec().EncodeLine(mapper.Fields(), archiveRow(mapper.Fields(), mapper.Row(rec)))
	}

	start := time.Now()
	ids, err := s.archive.Append(name, lines)
	s.metrics.RecordArchiveOperation("append", err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}
	s.logger.Info("records archived", "schema", name, "count", len(ids))
	return ids, nil
}

// archiveRow replaces nil Text values with "" so they decode back to nil.
// NullText in a Text field decodes as the literal string.
func archiveRow(fields []codec.Field, row codec.Row) codec.Row {
	for i, f := range fields {
		if row[i] == nil && f.Type.Base() == codec.TypeText {
			row[i] = ""
		}
	}
	return row
}

// Export returns the archived records of schema name as a text table, in
// archive order. With queries only records matching every condition are
// returned.
func (s *RecordService) Export(name string, queries ...query.FieldQuery) (string, error) {
	if err := s.requireArchive(); err != nil {
		return "", err
	}
	def, err := s.Definition(name)
	if err != nil {
		return "", err
	}
	filter, err := query.Compile(def, queries...)
	if err != nil {
		return "", err
	}

	start := time.Now()
	entries, err := s.archive.Scan(name)
	s.metrics.RecordArchiveOperation("scan", err == nil, time.Since(start))
	if err != nil {
		return "", err
	}

	table, mapper := s.table(def)
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if !filter.Empty() {
			rec, err := decodeArchived(table.Codec(), mapper, e.Line)
			if err != nil {
				return "", fmt.Errorf("archived record %s: %w", e.ID, err)
			}
			if !filter.Match(rec) {
				continue
			}
		}
		lines = append(lines, e.Line)
	}
	return strings.Join(lines, s.newline), nil
}

func decodeArchived(c *codec.Codec, mapper *schema.RecordMapper, line string) (schema.Record, error) {
	row, err := c.DecodeLine(mapper.Fields(), line)
	if err != nil {
		return nil, err
	}
	return mapper.Build(row)
}

// Get returns an archived line and its decoded record
func (s *RecordService) Get(name string, id ksuid.KSUID) (string, schema.Record, error) {
	if err := s.requireArchive(); err != nil {
		return "", nil, err
	}
	def, err := s.Definition(name)
	if err != nil {
		return "", nil, err
	}

	start := time.Now()
	line, err := s.archive.Get(name, id)
	s.metrics.RecordArchiveOperation("get", err == nil, time.Since(start))
	if err != nil {
		return "", nil, err
	}

	table, mapper := s.table(def)
	rec, err := decodeArchived(table.Codec(), mapper, line)
	if err != nil {
		return "", nil, fmt.Errorf("archived record %s no longer matches schema %s: %w", id, name, err)
	}
	return line, rec, nil
}

// Delete removes an archived record
func (s *RecordService) Delete(name string, id ksuid.KSUID) error {
	if err := s.requireArchive(); err != nil {
		return err
	}
	if _, err := s.Definition(name); err != nil {
		return err
	}

	start := time.Now()
	err := s.archive.Delete(name, id)
	s.metrics.RecordArchiveOperation("delete", err == nil, time.Since(start))
	return err
}

// Count returns the number of archived records of schema name
func (s *RecordService) Count(name string) (int, error) {
	if err := s.requireArchive(); err != nil {
		return 0, err
	}
	if _, err := s.Definition(name); err != nil {
		return 0, err
	}
	return s.archive.Count(name)
}

func (s *RecordService) requireArchive() error {
	if s.archive == nil {
		return errors.New("no archive configured")
	}
	return nil
}
