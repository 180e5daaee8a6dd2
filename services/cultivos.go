package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"agrocontrol_app_go/db"
	"agrocontrol_app_go/models"

	"go.uber.org/zap"
)

// PhotoURLField is added to crop records whose photo resolves to a URL
const PhotoURLField = "PHOTO_URL"

var CultivoDefinition = EntityDefinition{
	Schema: models.CultivoSchema,
	UsedIn: "parcelas",
}

// CultivoService adds photo handling to the generic controller
type CultivoService struct {
	*EntityController
	storage StorageProvider
	log     *zap.Logger
}

func NewCultivoService(gw *db.Gateway, storage StorageProvider, opts EntityOptions) *CultivoService {
	s := &CultivoService{storage: storage, log: opts.logger()}
	model := NewEntityModel(gw, CultivoDefinition, opts.InUseMarkers, opts.logger())
	capitalize := capitalizeFields("NOMBRE_COMUN")
	s.EntityController = NewEntityController(model, ControllerHooks{
		PreprocessCreate: capitalize,
		PreprocessUpdate: capitalize,
		PostprocessGet:   s.resolvePhoto,
	}, opts)
	return s
}

// SetPhoto stores an uploaded image and points the crop's PHOTO at it. The
// previous photo is removed once the record is updated.
func (s *CultivoService) SetPhoto(ctx context.Context, id interface{}, file *multipart.FileHeader) (models.Record, error) {
	if s.storage == nil {
		return nil, &OperationError{Entity: "cultivo", Action: ActionUpdate, Err: fmt.Errorf("storage not configured")}
	}

	current, err := s.model.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(ActionUpdate, err)
	}
	if err := ValidatePhotoUpload(file); err != nil {
		s.log.Info("Photo rejected", zap.String("filename", file.Filename), zap.Error(err))
		return nil, newValidationError(FieldRef{Name: "PHOTO", Label: "Foto"}, CodePhoto,
			"debe ser una imagen JPG, PNG, GIF o BMP de hasta 5MB", nil)
	}

	pk := toInt64(current[models.CultivoSchema.PrimaryKey])
	key := GenerateCropPhotoKey(pk, file.Filename)
	if _, err := s.storage.Upload(ctx, file, key); err != nil {
		return nil, s.mapError(ActionUpdate, err)
	}

	if err := s.model.SetField(ctx, pk, "PHOTO", key); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.log.Warn("Failed to remove orphaned photo", zap.String("key", key), zap.Error(delErr))
		}
		return nil, s.mapError(ActionUpdate, err)
	}

	// only keys issued for this crop are ever removed
	if old := toText(current["PHOTO"]); old != "" && old != key && IsCropPhotoKey(pk, old) {
		if err := s.storage.Delete(ctx, old); err != nil {
			s.log.Warn("Failed to remove previous photo", zap.String("key", old), zap.Error(err))
		}
	}

	if s.audit {
		LogAuditEvent(s.model.Gateway().GORM(), s.log, AuditContextFrom(ctx), models.AuditActionUpload,
			models.CultivoSchema.Entity, pk, toText(current["NOMBRE_COMUN"]), "Foto actualizada",
			map[string]interface{}{"PHOTO": current["PHOTO"]}, map[string]interface{}{"PHOTO": key})
	}
	return s.Get(ctx, pk)
}

// Photo opens the stored photo of a crop. The caller closes the reader.
func (s *CultivoService) Photo(ctx context.Context, id interface{}) (io.ReadCloser, string, error) {
	if s.storage == nil {
		return nil, "", &OperationError{Entity: "cultivo", Action: ActionGet, Err: fmt.Errorf("storage not configured")}
	}
	current, err := s.model.GetByID(ctx, id)
	if err != nil {
		return nil, "", s.mapError(ActionGet, err)
	}

	pk := toInt64(current[models.CultivoSchema.PrimaryKey])
	key := toText(current["PHOTO"])
	if key == "" || !IsCropPhotoKey(pk, key) {
		return nil, "", &NotFoundError{Entity: "Foto del cultivo", ID: pk}
	}
	reader, contentType, err := s.storage.Get(ctx, key)
	if err != nil {
		s.log.Warn("Stored photo unavailable", zap.String("key", key), zap.Error(err))
		return nil, "", &NotFoundError{Entity: "Foto del cultivo", ID: pk}
	}
	return reader, contentType, nil
}

func (s *CultivoService) resolvePhoto(ctx context.Context, record models.Record) models.Record {
	if url := ResolvePhotoURL(ctx, s.storage, toText(record["PHOTO"])); url != "" {
		record[PhotoURLField] = url
	}
	return record
}
