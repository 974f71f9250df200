package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/testdeck/console/internal/core/domain"
	"github.com/testdeck/console/internal/core/ports"
)

const auditCollection = "auth_audit"

var _ ports.AuditSink = (*AuditRepository)(nil)

// AuditRepository appends auth outcomes to the auth_audit collection.
type AuditRepository struct {
	db *mongo.Database
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{db: db}
}

// EnsureIndexes creates the lookup index by session and time. Safe to call on
// every start.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(auditCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "at", Value: -1}},
		Options: options.Index().SetName("session_at"),
	})
	if err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}
	return nil
}

// Record persists one auth event.
func (r *AuditRepository) Record(ctx context.Context, event domain.AuthAuditEvent) error {
	_, err := r.db.Collection(auditCollection).InsertOne(ctx, auditDocument(event))
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func auditDocument(event domain.AuthAuditEvent) bson.M {
	at := event.At
	if at.IsZero() {
		at = time.Now()
	}
	doc := bson.M{
		"session_id":  event.SessionID,
		"kind":        string(event.Kind),
		"success":     event.Success,
		"at":          at.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.Username != "" {
		doc["username"] = event.Username
	}
	if event.Error != "" {
		doc["error"] = event.Error
	}
	return doc
}
