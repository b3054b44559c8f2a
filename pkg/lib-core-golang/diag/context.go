package diag

import "context"

type contextKeys string

const (
	requestIDKey contextKeys = "requestID"
	usernameKey  contextKeys = "username"
)

// ContextWithRequestID - create context with requestID
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDValue - returns requestID value taken from context
func RequestIDValue(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// ContextWithUsername - create context with the authenticated username.
// The value is only used to enrich log records
func ContextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// UsernameValue - returns username taken from context
func UsernameValue(ctx context.Context) string {
	return stringValue(ctx, usernameKey)
}

func stringValue(ctx context.Context, key contextKeys) string {
	if ctx == nil {
		return ""
	}
	val, _ := ctx.Value(key).(string)
	return val
}

func contextData(ctx context.Context) map[string]string {
	var data map[string]string
	add := func(name string, val string) {
		if val == "" {
			return
		}
		if data == nil {
			data = make(map[string]string, 2)
		}
		data[name] = val
	}
	add("requestID", RequestIDValue(ctx))
	add("username", UsernameValue(ctx))
	return data
}
