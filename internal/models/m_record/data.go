package m_record

import (
	"time"

	"github.com/murkotick/marketplace-service/internal/pkg/committer"
)

// BuildInsertMap prepares the canonical fields for a log append.
func BuildInsertMap(namespace string, key uint64, schemaVersion int64, payload []byte, createdAt time.Time) map[string]interface{} {
	return map[string]interface{}{
		ColNamespace:     namespace,
		ColRecordKey:     int64(key),
		ColSchemaVersion: schemaVersion,
		ColPayload:       payload,
		ColCreatedAt:     createdAt.UTC(),
	}
}

// InsertMutation builds the insert for one record.
func InsertMutation(values map[string]interface{}) *committer.Mutation {
	return committer.Insert(TableName, values)
}
