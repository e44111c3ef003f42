package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	th := NoopThinningHooks{}
	th.OnRunStart(ctx, "in.png", 10, 10)
	th.OnRound(ctx, 1, 5, 3)
	th.OnRunComplete(ctx, "in.png", 2, time.Millisecond, errors.New("boom"))

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "result")
	c.OnCacheMiss(ctx, "result")
	c.OnCacheSet(ctx, "result", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/skeleton")
	h.OnResponse(ctx, "POST", "/v1/skeleton", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Thinning().(NoopThinningHooks); !ok {
		t.Error("Thinning() should default to NoopThinningHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should default to NoopCacheHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should default to NoopHTTPHooks")
	}

	th := &recordingThinning{}
	SetThinningHooks(th)
	if Thinning() != th {
		t.Error("SetThinningHooks did not register hooks")
	}
	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks did not register hooks")
	}
	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks did not register hooks")
	}

	Thinning().OnRound(context.Background(), 1, 4, 2)
	if th.rounds != 1 || th.erased != 6 {
		t.Errorf("recorded rounds=%d erased=%d, want 1 and 6", th.rounds, th.erased)
	}

	Reset()
	if _, ok := Thinning().(NoopThinningHooks); !ok {
		t.Error("Reset() should restore NoopThinningHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("Reset() should restore NoopHTTPHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &recordingThinning{}
	SetThinningHooks(custom)
	SetThinningHooks(nil)
	SetCacheHooks(nil)
	SetHTTPHooks(nil)

	if Thinning() != custom {
		t.Error("SetThinningHooks(nil) should be ignored")
	}
	if Cache() == nil || HTTP() == nil {
		t.Error("nil hooks must never be installed")
	}
}

type recordingThinning struct {
	NoopThinningHooks
	rounds, erased int
}

func (r *recordingThinning) OnRound(_ context.Context, _, first, second int) {
	r.rounds++
	r.erased += first + second
}

type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
