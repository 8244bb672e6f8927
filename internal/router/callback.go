package router

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Delimiter separates a callback pattern from its parameter payload.
const Delimiter = "_"

// Callback carries one inline-button press through dispatch. Params is
// filled by the router for prefix matches; handlers must validate the
// extracted values themselves, splitting is not validation.
type Callback struct {
	Token     string
	Params    []string
	UserID    int64
	ChatID    int64
	MessageID int
}

// HandlerFunc handles one routed callback.
type HandlerFunc func(ctx context.Context, cb *Callback) error

type prefixEntry struct {
	pattern string
	handler HandlerFunc
}

// CallbackRouter maps opaque callback tokens to handlers. Matching is
// exact-first across the whole registry, then a prefix scan in registration
// order; the first match wins. An unmatched token is logged and dropped
// since it may belong to an expired or superseded message.
type CallbackRouter struct {
	exact    map[string]HandlerFunc
	prefixes []prefixEntry
	logger   *zap.Logger
}

func NewCallbackRouter(logger *zap.Logger) *CallbackRouter {
	return &CallbackRouter{
		exact:  make(map[string]HandlerFunc),
		logger: logger,
	}
}

// HandleExact registers a handler for tokens equal to pattern.
func (r *CallbackRouter) HandleExact(pattern string, handler HandlerFunc) {
	r.exact[pattern] = handler
}

// HandlePrefix registers a handler for tokens starting with pattern. The
// pattern must end in the delimiter; the token remainder is split into
// Params. Prefix patterns must stay unambiguous: register the more specific
// pattern first, since the scan takes the first match.
func (r *CallbackRouter) HandlePrefix(pattern string, handler HandlerFunc) {
	if !strings.HasSuffix(pattern, Delimiter) {
		pattern += Delimiter
	}
	r.prefixes = append(r.prefixes, prefixEntry{pattern: pattern, handler: handler})
}

// Route dispatches the callback. Handler errors are logged, never
// propagated: the transport has already acknowledged the button press.
func (r *CallbackRouter) Route(ctx context.Context, cb *Callback) {
	if handler, ok := r.exact[cb.Token]; ok {
		r.dispatch(ctx, cb, handler)
		return
	}

	for _, entry := range r.prefixes {
		if strings.HasPrefix(cb.Token, entry.pattern) {
			cb.Params = SplitParams(strings.TrimPrefix(cb.Token, entry.pattern))
			r.dispatch(ctx, cb, entry.handler)
			return
		}
	}

	r.logger.Info("Unroutable callback token ignored",
		zap.String("token", cb.Token),
		zap.Int64("user_id", cb.UserID))
}

func (r *CallbackRouter) dispatch(ctx context.Context, cb *Callback, handler HandlerFunc) {
	if err := handler(ctx, cb); err != nil {
		r.logger.Error("Callback handler failed",
			zap.Error(err),
			zap.String("token", cb.Token),
			zap.Int64("user_id", cb.UserID))
	}
}

// SplitParams splits a token remainder into its delimiter-separated
// parameters. Pure string splitting; empty input yields no params.
func SplitParams(remainder string) []string {
	if remainder == "" {
		return nil
	}
	return strings.Split(remainder, Delimiter)
}
