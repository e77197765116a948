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
	FieldUserID     = "user_id"
	FieldKind       = "kind"
	FieldTxID       = "transaction_id"
)

const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentWorker   = "worker"
	ComponentSecurity = "security"
)

// Fields is an ordered list of key/value pairs for slog.
type Fields []any

func NewFields() Fields {
	return make(Fields, 0, 16)
}

func (f Fields) WithRequestID(id string) Fields {
	if id == "" {
		return f
	}
	return append(f, FieldRequestID, id)
}

func (f Fields) WithClientIP(ip string) Fields {
	return append(f, FieldClientIP, ip)
}

func (f Fields) WithError(err error) Fields {
	if err == nil {
		return f
	}
	return append(f, FieldError, err.Error())
}

func (f Fields) WithUser(id string) Fields {
	if id == "" {
		return f
	}
	return append(f, FieldUserID, id)
}

func (f Fields) WithHTTPRequest(method, path, query, userAgent string) Fields {
	f = append(f, FieldMethod, method, FieldPath, path)
	if query != "" {
		f = append(f, FieldQuery, query)
	}
	if userAgent != "" {
		f = append(f, FieldUserAgent, userAgent)
	}
	return f
}

func (f Fields) WithHTTPResponse(statusCode int, durationMs int64) Fields {
	return append(f,
		FieldStatusCode, statusCode,
		FieldDuration, durationMs,
		FieldSuccess, statusCode < 400)
}
