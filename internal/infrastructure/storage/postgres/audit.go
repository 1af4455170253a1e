// Package postgres provides PostgreSQL infrastructure components.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "pannpos/internal/core/context"
	"pannpos/internal/core/id"
	"pannpos/pkg/logger"
)

// AuditAction represents the type of audited operation.
type AuditAction string

const (
	AuditActionSale       AuditAction = "sale"
	AuditActionVoid       AuditAction = "void"
	AuditActionReceipt    AuditAction = "receipt"
	AuditActionAdjustment AuditAction = "adjustment"
	AuditActionCatalog    AuditAction = "catalog_change"
)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID                 id.ID           `db:"id"`
	EntityType         string          `db:"entity_type"`
	EntityID           id.ID           `db:"entity_id"`
	Action             AuditAction     `db:"action"`
	Actor              string          `db:"actor"`
	Terminal           string          `db:"terminal"`
	Snapshot           json.RawMessage `db:"snapshot"`
	SnapshotCompressed []byte          `db:"snapshot_compressed"`
	CompressionAlgo    CompressionAlgo `db:"compression_algo"`
	CreatedAt          time.Time       `db:"created_at"`
}

// AuditService records operation snapshots (sales, voids, stock receipts)
// for offline inspection. Large snapshots are zstd-compressed.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
	log               *logger.Logger
}

// NewAuditService creates a new audit service.
func NewAuditService(txManager *TxManager, log *logger.Logger) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024, // 10KB
		log:               log.WithComponent("audit"),
	}, nil
}

// Log records an audit entry.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	if actor := appctx.GetActor(ctx); actor != nil {
		if entry.Actor == "" {
			entry.Actor = actor.ActorID
		}
		if entry.Terminal == "" {
			entry.Terminal = actor.Terminal
		}
	}

	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	entry.CompressionAlgo = CompressionNone
	if len(entry.Snapshot) > s.compressThreshold {
		entry.SnapshotCompressed = s.encoder.EncodeAll(entry.Snapshot, nil)
		entry.Snapshot = nil
		entry.CompressionAlgo = CompressionZstd
	}

	sql := `
		INSERT INTO pos_audit (
			id, entity_type, entity_id, action, actor, terminal,
			snapshot, snapshot_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	querier := s.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		entry.ID, entry.EntityType, entry.EntityID, entry.Action,
		entry.Actor, entry.Terminal,
		entry.Snapshot, entry.SnapshotCompressed, entry.CompressionAlgo,
		entry.CreatedAt,
	)
	return err
}

// Record implements the checkout auditor contract. Failures are logged
// and swallowed: auditing never fails a transaction.
func (s *AuditService) Record(ctx context.Context, operation, entity string, entityID id.ID, payload any) {
	snapshot, err := json.Marshal(payload)
	if err != nil {
		s.log.WithContext(ctx).Warnw("audit snapshot marshal failed",
			"operation", operation, "entity", entity, "error", err)
		return
	}

	if err := s.Log(ctx, AuditEntry{
		EntityType: entity,
		EntityID:   entityID,
		Action:     actionForOperation(operation),
		Snapshot:   snapshot,
	}); err != nil {
		s.log.WithContext(ctx).Warnw("audit write failed",
			"operation", operation, "entity", entity, "error", err)
	}
}

func actionForOperation(operation string) AuditAction {
	switch operation {
	case "checkout.completed":
		return AuditActionSale
	case "checkout.voided":
		return AuditActionVoid
	case "inventory.received":
		return AuditActionReceipt
	case "inventory.adjusted":
		return AuditActionAdjustment
	default:
		return AuditActionCatalog
	}
}

// GetEntityHistory retrieves audit history for an entity.
func (s *AuditService) GetEntityHistory(ctx context.Context, entityType string, entityID id.ID, limit int) ([]AuditEntry, error) {
	sql := `
		SELECT id, entity_type, entity_id, action, actor, terminal,
			   snapshot, snapshot_compressed, compression_algo, created_at
		FROM pos_audit
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, sql, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		err := rows.Scan(
			&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.Actor, &e.Terminal,
			&e.Snapshot, &e.SnapshotCompressed, &e.CompressionAlgo, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		if e.CompressionAlgo == CompressionZstd && len(e.SnapshotCompressed) > 0 {
			decompressed, err := s.decoder.DecodeAll(e.SnapshotCompressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress snapshot: %w", err)
			}
			e.Snapshot = decompressed
			e.SnapshotCompressed = nil
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}
