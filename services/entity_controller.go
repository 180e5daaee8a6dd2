package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agrocontrol_app_go/models"

	"go.uber.org/zap"
)

// Operation names used in OperationError messages
const (
	ActionCreate = "creando"
	ActionGet    = "obteniendo"
	ActionUpdate = "actualizando"
	ActionDelete = "eliminando"
	ActionList   = "listando"
	ActionSearch = "buscando"
	ActionCount  = "contando"
)

// ControllerHooks customize an entity controller. Nil hooks are skipped.
type ControllerHooks struct {
	PreprocessCreate     func(input map[string]interface{}) map[string]interface{}
	PreprocessUpdate     func(input map[string]interface{}) map[string]interface{}
	PostprocessGet       func(ctx context.Context, record models.Record) models.Record
	PreprocessSearchTerm func(term string) string
}

// EntityOptions are shared by every entity service constructor
type EntityOptions struct {
	InUseMarkers []string
	Audit        bool
	Log          *zap.Logger
}

func (o EntityOptions) logger() *zap.Logger {
	if o.Log == nil {
		return zap.NewNop()
	}
	return o.Log
}

// EntityController sits between the HTTP views and the model. It runs the
// entity hooks, records audit entries for mutations, and maps every failure
// onto the error taxonomy.
type EntityController struct {
	model *EntityModel
	hooks ControllerHooks
	audit bool
	log   *zap.Logger
}

func NewEntityController(model *EntityModel, hooks ControllerHooks, opts EntityOptions) *EntityController {
	if hooks.PreprocessSearchTerm == nil {
		hooks.PreprocessSearchTerm = strings.TrimSpace
	}
	return &EntityController{
		model: model,
		hooks: hooks,
		audit: opts.Audit,
		log:   opts.logger().With(zap.String("entity", model.Schema().Entity)),
	}
}

// Model returns the wrapped model
func (c *EntityController) Model() *EntityModel {
	return c.model
}

// Schema returns the entity schema
func (c *EntityController) Schema() models.EntitySchema {
	return c.model.Schema()
}

// Create stores a new record and returns its id
func (c *EntityController) Create(ctx context.Context, input map[string]interface{}) (int64, error) {
	input = c.preprocess(c.hooks.PreprocessCreate, input)

	id, err := c.model.Create(ctx, input)
	if err != nil {
		return 0, c.mapError(ActionCreate, err)
	}

	c.log.Info("Record created", zap.Int64("id", id))
	if c.audit {
		if record, err := c.model.GetByID(ctx, id); err == nil {
			c.logAudit(ctx, models.AuditActionCreate, id, record, nil, record)
		}
	}
	return id, nil
}

// Get returns one record after the entity's post-processing
func (c *EntityController) Get(ctx context.Context, id interface{}) (models.Record, error) {
	record, err := c.model.GetByID(ctx, id)
	if err != nil {
		return nil, c.mapError(ActionGet, err)
	}
	return c.postprocess(ctx, record), nil
}

// Update replaces an existing record
func (c *EntityController) Update(ctx context.Context, id interface{}, input map[string]interface{}) error {
	input = c.preprocess(c.hooks.PreprocessUpdate, input)

	var before models.Record
	if c.audit {
		before, _ = c.model.GetByID(ctx, id)
	}

	if err := c.model.Update(ctx, id, input); err != nil {
		return c.mapError(ActionUpdate, err)
	}

	if c.audit && before != nil {
		pk := toInt64(before[c.Schema().PrimaryKey])
		if after, err := c.model.GetByID(ctx, pk); err == nil {
			c.logAudit(ctx, models.AuditActionUpdate, pk, after, before, after)
		}
	}
	return nil
}

// Delete removes an existing record
func (c *EntityController) Delete(ctx context.Context, id interface{}) error {
	var before models.Record
	if c.audit {
		before, _ = c.model.GetByID(ctx, id)
	}

	if err := c.model.Delete(ctx, id); err != nil {
		return c.mapError(ActionDelete, err)
	}

	if c.audit && before != nil {
		pk := toInt64(before[c.Schema().PrimaryKey])
		c.logAudit(ctx, models.AuditActionDelete, pk, before, before, nil)
	}
	return nil
}

// List returns every record, or an empty list when the database fails
func (c *EntityController) List(ctx context.Context) []models.Record {
	return c.postprocessAll(ctx, c.model.GetAll(ctx))
}

// Search matches term against the searchable columns
func (c *EntityController) Search(ctx context.Context, term string) ([]models.Record, error) {
	term = c.hooks.PreprocessSearchTerm(term)
	records, err := c.model.Search(ctx, term)
	if err != nil {
		return nil, c.mapError(ActionSearch, err)
	}
	return c.postprocessAll(ctx, records), nil
}

// FindBy returns the records whose field equals value, ignoring case
func (c *EntityController) FindBy(ctx context.Context, field string, value interface{}) ([]models.Record, error) {
	records, err := c.model.FindBy(ctx, field, value)
	if err != nil {
		return nil, c.mapError(ActionSearch, err)
	}
	return c.postprocessAll(ctx, records), nil
}

// Exists reports whether a record with the id is stored
func (c *EntityController) Exists(ctx context.Context, id interface{}) (bool, error) {
	ok, err := c.model.Exists(ctx, id)
	if err != nil {
		return false, c.mapError(ActionGet, err)
	}
	return ok, nil
}

// Count returns the number of stored records
func (c *EntityController) Count(ctx context.Context) (int64, error) {
	n, err := c.model.Count(ctx)
	if err != nil {
		return 0, c.mapError(ActionCount, err)
	}
	return n, nil
}

// ValidateForUI checks the input without persisting anything. The map holds
// one error per failing field, keyed by field name.
func (c *EntityController) ValidateForUI(ctx context.Context, input map[string]interface{}) (bool, map[string]*ValidationError) {
	input = c.preprocess(c.hooks.PreprocessCreate, input)

	record, failures := ValidateRecordAll(c.Schema(), input)
	errs := make(map[string]*ValidationError, len(failures))
	for _, ve := range failures {
		errs[ve.Field] = ve
	}
	if len(errs) == 0 {
		if err := c.model.checkReferences(ctx, record); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				errs[ve.Field] = ve
			} else {
				c.log.Warn("Reference check failed", zap.Error(err))
			}
		}
	}
	return len(errs) == 0, errs
}

// History returns the audit entries recorded for one record, newest first
func (c *EntityController) History(ctx context.Context, id interface{}) ([]models.AuditLog, error) {
	pk, err := ValidateID(id)
	if err != nil {
		return nil, err
	}
	gdb := c.model.Gateway().GORM()
	if gdb == nil {
		return nil, c.mapError(ActionGet, ErrConnection)
	}
	logs, err := GetResourceAuditHistory(gdb.WithContext(ctx), c.Schema().Entity, pk)
	if err != nil {
		return nil, c.mapError(ActionGet, err)
	}
	return logs, nil
}

// mapError passes the domain errors through and wraps everything else
func (c *EntityController) mapError(action string, err error) error {
	var (
		ve *ValidationError
		nf *NotFoundError
		iu *EntityInUseError
		oe *OperationError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &nf), errors.As(err, &iu), errors.As(err, &oe):
		return err
	}
	c.log.Error("Operation failed", zap.String("action", action), zap.Error(err))
	return &OperationError{Entity: strings.ToLower(c.Schema().Entity), Action: action, Err: err}
}

func (c *EntityController) preprocess(hook func(map[string]interface{}) map[string]interface{}, input map[string]interface{}) map[string]interface{} {
	copied := make(map[string]interface{}, len(input))
	for k, v := range input {
		copied[k] = v
	}
	if hook == nil {
		return copied
	}
	return hook(copied)
}

func (c *EntityController) postprocess(ctx context.Context, record models.Record) models.Record {
	if c.hooks.PostprocessGet == nil {
		return record
	}
	return c.hooks.PostprocessGet(ctx, record)
}

func (c *EntityController) postprocessAll(ctx context.Context, records []models.Record) []models.Record {
	for i, r := range records {
		records[i] = c.postprocess(ctx, r)
	}
	return records
}

func (c *EntityController) logAudit(ctx context.Context, action models.AuditAction, id int64, named, before, after models.Record) {
	s := c.Schema()
	name := ""
	if len(s.Fields) > 0 && named != nil {
		name = toText(named[s.Fields[0].Name])
	}
	var oldValues, newValues interface{}
	if before != nil {
		oldValues = before
	}
	if after != nil {
		newValues = after
	}
	LogAuditEvent(c.model.Gateway().GORM(), c.log, AuditContextFrom(ctx), action, s.Entity, id, name,
		fmt.Sprintf("%s %s", s.Entity, strings.ToLower(string(action))), oldValues, newValues)
}
