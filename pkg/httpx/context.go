package httpx

import "context"

type ctxKey string

// CtxKeyUserID carries the authenticated caller's identity id, set by the
// authorization middleware and consumed by per-user rate limiting.
const CtxKeyUserID ctxKey = "user_id"

func userIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}
