package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldCollection = "collection"
	FieldRecordID   = "record_id"
	FieldCount      = "count"
	FieldVersion    = "version"
	FieldPreset     = "preset"
	FieldPerson     = "person"
	FieldBackend    = "backend"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentRecords   = "records"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentLoader    = "loader"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
	ComponentBackend   = "backend"
	ComponentDashboard = "dashboard"
	ComponentRates     = "rates"
	ComponentReport    = "report"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpSync     = "sync"
	OpLoad     = "load"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// Fields provides a builder for structured log fields. Keys keep insertion
// order so log lines stay stable.
type Fields struct {
	kv []any
}

func NewFields() *Fields {
	return &Fields{}
}

func (f *Fields) Add(key string, value any) *Fields {
	f.kv = append(f.kv, key, value)
	return f
}

func (f *Fields) WithRequestID(id string) *Fields { return f.Add(FieldRequestID, id) }

func (f *Fields) WithClientIP(ip string) *Fields { return f.Add(FieldClientIP, ip) }

func (f *Fields) WithOperation(op string) *Fields { return f.Add(FieldOperation, op) }

// WithError adds error field
func (f *Fields) WithError(err error) *Fields {
	if err != nil {
		f.Add(FieldError, err.Error())
	}
	return f
}

// WithRecord adds the collection and record id of a persistence operation.
func (f *Fields) WithRecord(collection, id string) *Fields {
	f.Add(FieldCollection, collection)
	if id != "" {
		f.Add(FieldRecordID, id)
	}
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f *Fields) WithHTTPRequest(method, path, query, userAgent string) *Fields {
	f.Add(FieldMethod, method).Add(FieldPath, path)
	if query != "" {
		f.Add(FieldQuery, query)
	}
	if userAgent != "" {
		f.Add(FieldUserAgent, userAgent)
	}
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f *Fields) WithHTTPResponse(statusCode int, durationMs int64) *Fields {
	return f.Add(FieldStatusCode, statusCode).
		Add(FieldDuration, durationMs).
		Add(FieldSuccess, statusCode < 400)
}

// Args returns the key/value pairs for slog.
func (f *Fields) Args() []any {
	return append([]any(nil), f.kv...)
}
