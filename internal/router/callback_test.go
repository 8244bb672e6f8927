package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func recordingHandler(name string, calls *[]string, params *[]string) HandlerFunc {
	return func(_ context.Context, cb *Callback) error {
		*calls = append(*calls, name)
		if params != nil {
			*params = cb.Params
		}
		return nil
	}
}

func TestRouteExactBeforePrefix(t *testing.T) {
	r := NewCallbackRouter(zap.NewNop())

	var calls []string
	r.HandlePrefix("cancel_", recordingHandler("prefix", &calls, nil))
	r.HandleExact("cancel_all", recordingHandler("exact", &calls, nil))

	r.Route(context.Background(), &Callback{Token: "cancel_all"})

	assert.Equal(t, []string{"exact"}, calls)
}

func TestRoutePrefixRegistrationOrder(t *testing.T) {
	r := NewCallbackRouter(zap.NewNop())

	var calls []string
	r.HandlePrefix("confirm_account_", recordingHandler("account", &calls, nil))
	r.HandlePrefix("confirm_tx_", recordingHandler("tx", &calls, nil))
	r.HandlePrefix("confirm_", recordingHandler("generic", &calls, nil))

	r.Route(context.Background(), &Callback{Token: "confirm_account_abc123"})
	r.Route(context.Background(), &Callback{Token: "confirm_tx_abc123"})
	r.Route(context.Background(), &Callback{Token: "confirm_other"})

	assert.Equal(t, []string{"account", "tx", "generic"}, calls)
}

func TestRouteFillsParams(t *testing.T) {
	r := NewCallbackRouter(zap.NewNop())

	var calls, params []string
	r.HandlePrefix("select_account_", recordingHandler("select", &calls, &params))

	r.Route(context.Background(), &Callback{
		Token: "select_account_9f1b2c3d-0000-4000-8000-000000000001",
	})

	require.Equal(t, []string{"select"}, calls)
	assert.Equal(t, []string{"9f1b2c3d-0000-4000-8000-000000000001"}, params)
}

func TestHandlePrefixAppendsDelimiter(t *testing.T) {
	r := NewCallbackRouter(zap.NewNop())

	var calls []string
	r.HandlePrefix("cancel", recordingHandler("cancel", &calls, nil))

	// "cancel" alone has no parameter payload and must not route.
	r.Route(context.Background(), &Callback{Token: "cancel"})
	r.Route(context.Background(), &Callback{Token: "cancel_abc"})

	assert.Equal(t, []string{"cancel"}, calls)
}

func TestRouteUnmatchedTokenIsDropped(t *testing.T) {
	r := NewCallbackRouter(zap.NewNop())

	var calls []string
	r.HandlePrefix("confirm_", recordingHandler("confirm", &calls, nil))

	assert.NotPanics(t, func() {
		r.Route(context.Background(), &Callback{Token: "stale_button_from_old_version"})
	})
	assert.Empty(t, calls)
}

func TestRouteHandlerErrorNotPropagated(t *testing.T) {
	r := NewCallbackRouter(zap.NewNop())

	r.HandleExact("boom", func(context.Context, *Callback) error {
		return errors.New("handler failed")
	})

	assert.NotPanics(t, func() {
		r.Route(context.Background(), &Callback{Token: "boom"})
	})
}

func TestSplitParams(t *testing.T) {
	assert.Nil(t, SplitParams(""))
	assert.Equal(t, []string{"abc"}, SplitParams("abc"))
	assert.Equal(t, []string{"abc", "def"}, SplitParams("abc_def"))
}
