package m_record

// Field constants for the records table. Both append-only logs (products and
// orders) live in this table, separated by namespace.
const (
	TableName = "records"

	ColNamespace     = "namespace"
	ColRecordKey     = "record_key"
	ColSchemaVersion = "schema_version"
	ColPayload       = "payload"
	ColCreatedAt     = "created_at"
)
