package services

import (
	"context"
	"encoding/json"
	"sync"

	"agrocontrol_app_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditContext contains contextual information for audit logging
type AuditContext struct {
	IPAddress string
	UserAgent string
}

type auditContextKey struct{}

// WithAuditContext stores the request metadata in ctx
func WithAuditContext(ctx context.Context, a AuditContext) context.Context {
	return context.WithValue(ctx, auditContextKey{}, a)
}

// AuditContextFrom returns the request metadata stored in ctx, if any
func AuditContextFrom(ctx context.Context) AuditContext {
	if a, ok := ctx.Value(auditContextKey{}).(AuditContext); ok {
		return a
	}
	return AuditContext{}
}

var pendingAudits sync.WaitGroup

// LogAuditEvent creates a new audit log entry asynchronously
func LogAuditEvent(
	db *gorm.DB,
	log *zap.Logger,
	ctx AuditContext,
	action models.AuditAction,
	resourceType string,
	resourceID int64,
	resourceName string,
	description string,
	oldValues interface{},
	newValues interface{},
) {
	if db == nil {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}

	pendingAudits.Add(1)
	// Run in goroutine to avoid blocking the request
	go func() {
		defer pendingAudits.Done()

		auditLog := models.AuditLog{
			ResourceType: resourceType,
			ResourceID:   resourceID,
			ResourceName: resourceName,
			Action:       action,
			Description:  description,
			OldValues:    encodeAuditValues(oldValues),
			NewValues:    encodeAuditValues(newValues),
			IPAddress:    ctx.IPAddress,
			UserAgent:    ctx.UserAgent,
		}

		if err := db.Create(&auditLog).Error; err != nil {
			log.Warn("Failed to create audit log", zap.Error(err),
				zap.String("resource_type", resourceType), zap.Int64("resource_id", resourceID))
		}
	}()
}

// WaitForAuditEvents blocks until every pending audit write has finished
func WaitForAuditEvents() {
	pendingAudits.Wait()
}

// GetResourceAuditHistory retrieves the audit history for a specific record
func GetResourceAuditHistory(db *gorm.DB, resourceType string, resourceID int64) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := db.Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

func encodeAuditValues(values interface{}) string {
	if values == nil {
		return ""
	}
	bytes, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return string(bytes)
}
