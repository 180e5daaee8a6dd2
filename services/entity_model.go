package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"agrocontrol_app_go/db"
	"agrocontrol_app_go/models"

	"go.uber.org/zap"
)

// ProcedureCall is a stored procedure invocation with fixed arguments
type ProcedureCall struct {
	Name string
	Args []interface{}
}

// Procedures names the stored procedures an entity may use. Each one is only
// called when the startup probe found it; otherwise plain SQL is issued.
type Procedures struct {
	Create  string
	GetByID string
	Update  string // arguments: id followed by Fields
	Delete  string
	Search  string
	GetAll  []ProcedureCall
	// Fields are the record fields passed to Create and Update, in order.
	// Records carrying values outside this list bypass the procedures.
	Fields []string
}

// EntityDefinition configures the generic model for one entity
type EntityDefinition struct {
	Schema     models.EntitySchema
	UsedIn     string // dependent entity named in in-use errors
	Procedures Procedures
}

var identPattern = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`)

// EntityModel implements create/read/update/delete/search for one entity on
// top of the shared gateway.
type EntityModel struct {
	def     EntityDefinition
	gw      *db.Gateway
	markers []string
	log     *zap.Logger
}

func NewEntityModel(gw *db.Gateway, def EntityDefinition, inUseMarkers []string, log *zap.Logger) *EntityModel {
	if log == nil {
		log = zap.NewNop()
	}
	return &EntityModel{
		def:     def,
		gw:      gw,
		markers: inUseMarkers,
		log:     log.With(zap.String("entity", def.Schema.Entity)),
	}
}

// Schema returns the entity schema
func (m *EntityModel) Schema() models.EntitySchema {
	return m.def.Schema
}

// Definition returns the full entity definition
func (m *EntityModel) Definition() EntityDefinition {
	return m.def
}

// Gateway returns the shared gateway the model runs on
func (m *EntityModel) Gateway() *db.Gateway {
	return m.gw
}

// Create validates the input, persists it and returns the new primary key
func (m *EntityModel) Create(ctx context.Context, input map[string]interface{}) (int64, error) {
	record, err := ValidateRecord(m.def.Schema, input)
	if err != nil {
		return 0, err
	}
	if err := m.checkReferences(ctx, record); err != nil {
		return 0, err
	}

	procs := m.def.Procedures
	if m.gw.HasProcedure(procs.Create) && m.procedureCovers(record) {
		rows, err := m.gw.CallProcedure(ctx, procs.Create, m.procedureArgs(record)...)
		if err != nil {
			return 0, err
		}
		if len(rows) > 0 {
			if id := m.idFromRow(rows[0]); id > 0 {
				m.log.Debug("Created via procedure", zap.Int64("id", id))
				return id, nil
			}
		}
		return 0, fmt.Errorf("%w: no se pudo obtener el ID de %s creado", ErrOperation, m.def.Schema.Entity)
	}

	cols := m.def.Schema.Columns()
	quoted := make([]string, len(cols))
	args := make([]interface{}, len(cols))
	for i, f := range m.def.Schema.Editable() {
		quoted[i] = quoteIdent(f.ColumnName())
		args[i] = record[f.Name]
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(m.def.Schema.Table),
		strings.Join(quoted, ", "),
		placeholders(len(cols)))

	res, err := m.gw.ExecuteQuery(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	id := res.LastInsertID
	if id <= 0 {
		id = m.lastInsertID(ctx)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%w: no se pudo obtener el ID de %s creado", ErrOperation, m.def.Schema.Entity)
	}
	m.log.Debug("Created", zap.Int64("id", id))
	return id, nil
}

// GetByID returns exactly one record, or a NotFoundError
func (m *EntityModel) GetByID(ctx context.Context, rawID interface{}) (models.Record, error) {
	id, err := ValidateID(rawID)
	if err != nil {
		return nil, err
	}

	var rows []db.Row
	if proc := m.def.Procedures.GetByID; m.gw.HasProcedure(proc) {
		rows, err = m.gw.CallProcedure(ctx, proc, id)
	} else {
		rows, err = m.gw.Query(ctx, m.selectSQL()+" WHERE "+quoteIdent(m.def.Schema.PrimaryKey)+" = ?", id)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &NotFoundError{Entity: m.def.Schema.Entity, ID: id}
	}
	return m.fromRow(rows[0]), nil
}

// Update replaces every editable field of an existing record
func (m *EntityModel) Update(ctx context.Context, rawID interface{}, input map[string]interface{}) error {
	id, err := ValidateID(rawID)
	if err != nil {
		return err
	}
	if _, err := m.GetByID(ctx, id); err != nil {
		return err
	}

	record, err := ValidateRecord(m.def.Schema, input)
	if err != nil {
		return err
	}
	if err := m.checkReferences(ctx, record); err != nil {
		return err
	}

	procs := m.def.Procedures
	if m.gw.HasProcedure(procs.Update) && m.procedureCovers(record) {
		args := append([]interface{}{id}, m.procedureArgs(record)...)
		_, err := m.gw.CallProcedure(ctx, procs.Update, args...)
		return err
	}

	editable := m.def.Schema.Editable()
	sets := make([]string, 0, len(editable))
	args := make([]interface{}, 0, len(editable)+1)
	for _, f := range editable {
		sets = append(sets, quoteIdent(f.ColumnName())+" = ?")
		args = append(args, record[f.Name])
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		quoteIdent(m.def.Schema.Table),
		strings.Join(sets, ", "),
		quoteIdent(m.def.Schema.PrimaryKey))

	res, err := m.gw.ExecuteQuery(ctx, query, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: m.def.Schema.Entity, ID: id}
	}
	return nil
}

// SetField writes a single read-only field of an existing record. It is the
// only way such fields change; form input never reaches them.
func (m *EntityModel) SetField(ctx context.Context, rawID interface{}, name string, value interface{}) error {
	id, err := ValidateID(rawID)
	if err != nil {
		return err
	}
	f, ok := m.def.Schema.Field(name)
	if !ok || !f.ReadOnly {
		return fmt.Errorf("%w: %s no es un campo de solo lectura de %s", ErrOperation, name, m.def.Schema.Entity)
	}

	query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?",
		quoteIdent(m.def.Schema.Table), quoteIdent(f.ColumnName()), quoteIdent(m.def.Schema.PrimaryKey))
	res, err := m.gw.ExecuteQuery(ctx, query, value, id)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: m.def.Schema.Entity, ID: id}
	}
	return nil
}

// Delete removes an existing record. Rows still referencing it turn the
// failure into an EntityInUseError.
func (m *EntityModel) Delete(ctx context.Context, rawID interface{}) error {
	id, err := ValidateID(rawID)
	if err != nil {
		return err
	}
	if _, err := m.GetByID(ctx, id); err != nil {
		return err
	}

	if proc := m.def.Procedures.Delete; m.gw.HasProcedure(proc) {
		if _, err := m.gw.CallProcedure(ctx, proc, id); err != nil {
			return m.classifyDeleteError(id, err)
		}
		return nil
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?",
		quoteIdent(m.def.Schema.Table), quoteIdent(m.def.Schema.PrimaryKey))
	res, err := m.gw.ExecuteQuery(ctx, query, id)
	if err != nil {
		return m.classifyDeleteError(id, err)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: m.def.Schema.Entity, ID: id}
	}
	return nil
}

// GetAll lists every record. Detected procedures are tried in order, then a
// plain SELECT; failures are logged and a total failure yields an empty list.
func (m *EntityModel) GetAll(ctx context.Context) []models.Record {
	for _, call := range m.def.Procedures.GetAll {
		if !m.gw.HasProcedure(call.Name) {
			continue
		}
		rows, err := m.gw.CallProcedure(ctx, call.Name, call.Args...)
		if err != nil {
			m.log.Warn("Listing procedure failed, trying next", zap.String("procedure", call.Name), zap.Error(err))
			continue
		}
		return m.fromRows(rows)
	}

	rows, err := m.gw.Query(ctx, m.selectSQL()+" ORDER BY "+quoteIdent(m.def.Schema.PrimaryKey))
	if err != nil {
		m.log.Error("Listing failed", zap.Error(err))
		return []models.Record{}
	}
	return m.fromRows(rows)
}

// Search matches the term against the searchable columns. A blank term
// returns an empty list without touching the database.
func (m *EntityModel) Search(ctx context.Context, term string) ([]models.Record, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.Record{}, nil
	}

	if proc := m.def.Procedures.Search; m.gw.HasProcedure(proc) {
		rows, err := m.gw.CallProcedure(ctx, proc, term)
		if err != nil {
			return nil, err
		}
		return m.fromRows(rows), nil
	}

	cols := m.def.Schema.SearchColumns()
	if len(cols) == 0 {
		return []models.Record{}, nil
	}
	conds := make([]string, len(cols))
	args := make([]interface{}, len(cols))
	pattern := "%" + term + "%"
	for i, col := range cols {
		conds[i] = quoteIdent(col) + " LIKE ?"
		args[i] = pattern
	}
	query := m.selectSQL() + " WHERE " + strings.Join(conds, " OR ") +
		" ORDER BY " + quoteIdent(m.def.Schema.PrimaryKey)

	rows, err := m.gw.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return m.fromRows(rows), nil
}

// FindBy returns the records whose column equals value, ignoring case
func (m *EntityModel) FindBy(ctx context.Context, field string, value interface{}) ([]models.Record, error) {
	f, ok := m.def.Schema.Field(field)
	if !ok {
		return nil, fmt.Errorf("%w: unknown field %q", ErrOperation, field)
	}
	query := m.selectSQL() + " WHERE LOWER(" + quoteIdent(f.ColumnName()) + ") = LOWER(?) ORDER BY " +
		quoteIdent(m.def.Schema.PrimaryKey)
	rows, err := m.gw.Query(ctx, query, value)
	if err != nil {
		return nil, err
	}
	return m.fromRows(rows), nil
}

// Exists reports whether a record with the id is stored. Invalid ids simply
// do not exist.
func (m *EntityModel) Exists(ctx context.Context, rawID interface{}) (bool, error) {
	id, err := ValidateID(rawID)
	if err != nil {
		return false, nil
	}
	query := fmt.Sprintf("SELECT COUNT(*) AS total FROM %s WHERE %s = ?",
		quoteIdent(m.def.Schema.Table), quoteIdent(m.def.Schema.PrimaryKey))
	rows, err := m.gw.Query(ctx, query, id)
	if err != nil {
		return false, err
	}
	return len(rows) > 0 && toInt64(rows[0]["total"]) > 0, nil
}

// Count returns the number of stored records
func (m *EntityModel) Count(ctx context.Context) (int64, error) {
	rows, err := m.gw.Query(ctx, "SELECT COUNT(*) AS total FROM "+quoteIdent(m.def.Schema.Table))
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return toInt64(rows[0]["total"]), nil
}

// ValidateForeignKey reports whether value exists in table.column. A nil
// value is a valid (absent) reference.
func (m *EntityModel) ValidateForeignKey(ctx context.Context, table, column string, value interface{}) (bool, error) {
	if value == nil {
		return true, nil
	}
	if !identPattern.MatchString(table) || !identPattern.MatchString(column) {
		return false, fmt.Errorf("%w: invalid reference %s.%s", ErrOperation, table, column)
	}
	query := fmt.Sprintf("SELECT COUNT(*) AS total FROM %s WHERE %s = ?", quoteIdent(table), quoteIdent(column))
	rows, err := m.gw.Query(ctx, query, value)
	if err != nil {
		return false, err
	}
	return len(rows) > 0 && toInt64(rows[0]["total"]) > 0, nil
}

func (m *EntityModel) checkReferences(ctx context.Context, record models.Record) error {
	for _, f := range m.def.Schema.References() {
		value := record[f.Name]
		ok, err := m.ValidateForeignKey(ctx, f.Ref.Table, f.Ref.Column, value)
		if err != nil {
			return err
		}
		if !ok {
			return newValidationError(FieldRef{Name: f.Name, Label: f.Label}, CodeReference,
				fmt.Sprintf("no existe %s con ID %v", f.Ref.Entity, value),
				map[string]interface{}{"entity": f.Ref.Entity, "id": value})
		}
	}
	return nil
}

func (m *EntityModel) classifyDeleteError(id int64, err error) error {
	if db.IsForeignKeyViolation(err) || m.matchesInUseMarker(err) {
		m.log.Info("Delete blocked by dependent rows", zap.Int64("id", id))
		return &EntityInUseError{
			Entity: m.def.Schema.Entity,
			ID:     id,
			UsedIn: m.def.UsedIn,
			Err:    err,
		}
	}
	return err
}

func (m *EntityModel) matchesInUseMarker(err error) bool {
	msg := strings.ToLower(db.SignalMessage(err))
	for _, marker := range m.markers {
		if marker != "" && strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// procedureCovers reports whether every value in the record can be passed to
// the create/update procedures.
func (m *EntityModel) procedureCovers(record models.Record) bool {
	passed := make(map[string]bool, len(m.def.Procedures.Fields))
	for _, name := range m.def.Procedures.Fields {
		passed[name] = true
	}
	for name, value := range record {
		if value != nil && !passed[name] {
			return false
		}
	}
	return true
}

func (m *EntityModel) procedureArgs(record models.Record) []interface{} {
	args := make([]interface{}, len(m.def.Procedures.Fields))
	for i, name := range m.def.Procedures.Fields {
		args[i] = record[name]
	}
	return args
}

func (m *EntityModel) lastInsertID(ctx context.Context) int64 {
	query := "SELECT last_insert_rowid() AS id"
	if m.gw.SupportsProcedures() {
		query = "SELECT LAST_INSERT_ID() AS id"
	}
	rows, err := m.gw.Query(ctx, query)
	if err != nil || len(rows) == 0 {
		return 0
	}
	return toInt64(rows[0]["id"])
}

// idFromRow picks the generated key out of a procedure result row
func (m *EntityModel) idFromRow(row db.Row) int64 {
	if len(row) == 1 {
		for _, v := range row {
			return toInt64(v)
		}
	}
	for _, key := range []string{m.def.Schema.PrimaryKey, "id", "new_id", "LAST_INSERT_ID()"} {
		for k, v := range row {
			if strings.EqualFold(k, key) {
				return toInt64(v)
			}
		}
	}
	return 0
}

func (m *EntityModel) selectSQL() string {
	s := m.def.Schema
	cols := make([]string, 0, len(s.Fields)+1)
	cols = append(cols, quoteIdent(s.PrimaryKey))
	for _, f := range s.Fields {
		cols = append(cols, quoteIdent(f.ColumnName())+" AS "+quoteIdent(f.Name))
	}
	return "SELECT " + strings.Join(cols, ", ") + " FROM " + quoteIdent(s.Table)
}

func (m *EntityModel) fromRows(rows []db.Row) []models.Record {
	out := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, m.fromRow(row))
	}
	return out
}

// fromRow maps a result row onto the schema by column name, whatever the
// casing or aliasing the query or procedure used.
func (m *EntityModel) fromRow(row db.Row) models.Record {
	lower := make(map[string]interface{}, len(row))
	for k, v := range row {
		lower[strings.ToLower(k)] = v
	}

	s := m.def.Schema
	record := models.Record{s.PrimaryKey: toInt64(lower[strings.ToLower(s.PrimaryKey)])}
	for _, f := range s.Fields {
		v, ok := lower[strings.ToLower(f.Name)]
		if !ok {
			v = lower[strings.ToLower(f.ColumnName())]
		}
		record[f.Name] = normalizeValue(f.Kind, v)
	}
	return record
}

func normalizeValue(kind models.FieldKind, v interface{}) interface{} {
	if v == nil {
		return nil
	}
	switch kind {
	case models.KindInt:
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			return nil
		}
		return toInt64(v)
	case models.KindFloat:
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			return nil
		}
		return toFloat64(v)
	case models.KindDate:
		if t, ok := v.(time.Time); ok {
			return t.Format(dateLayout)
		}
		s := toText(v)
		if len(s) > len(dateLayout) {
			s = s[:len(dateLayout)]
		}
		return s
	case models.KindTime:
		if t, ok := v.(time.Time); ok {
			return t.Format(timeLayout)
		}
		s := toText(v)
		if len(s) == 8 && strings.Count(s, ":") == 2 {
			s = s[:5]
		}
		return s
	default:
		return toText(v)
	}
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case uint64:
		if n > math.MaxInt64 {
			return 0
		}
		return int64(n)
	case float64:
		return int64(n)
	case []byte:
		return toInt64(string(n))
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f)
		}
	}
	return 0
}

func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case []byte:
		return toFloat64(string(n))
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return 0
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
