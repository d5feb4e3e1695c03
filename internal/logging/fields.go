package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a log line for filtering (retry_scheduled, partition_saved, ...).
	FieldEventType = "event_type"
	// FieldErrorHint suggests the operator's next step.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
	// FieldRunID is the identifier of one update run.
	FieldRunID = "run_id"
	// FieldPipeline names the crawl pipeline (titles, updates, updates3ds, dlcs).
	FieldPipeline = "pipeline"
	// FieldRegion is the listing region being crawled.
	FieldRegion = "region"
	// FieldOperation names the remote call wrapped by the retry policy.
	FieldOperation = "operation"
	FieldTitleID   = "title_id"
	FieldPartition = "partition"
)
