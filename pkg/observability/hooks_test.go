package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	l := NoopLayoutHooks{}
	l.OnLayoutStart(ctx, "root", 12)
	l.OnPassComplete(ctx, "root", 1, 7, 42.5)
	l.OnLayoutSuperseded(ctx, "root")
	l.OnLayoutComplete(ctx, "root", time.Second, nil)

	NoopEditHooks{}.OnEdit(ctx, "promote", "node", nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "layout", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/scenes/demo/layout")
	h.OnResponse(ctx, "POST", "/scenes/demo/layout", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() should return NoopLayoutHooks by default")
	}
	if _, ok := Edit().(NoopEditHooks); !ok {
		t.Error("Edit() should return NoopEditHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customLayout := &testLayoutHooks{}
	SetLayoutHooks(customLayout)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks should set custom hooks")
	}

	customEdit := &testEditHooks{}
	SetEditHooks(customEdit)
	if Edit() != customEdit {
		t.Error("SetEditHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Reset() should restore NoopLayoutHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testLayoutHooks{}
	SetLayoutHooks(custom)
	SetLayoutHooks(nil)

	if Layout() != custom {
		t.Error("SetLayoutHooks(nil) should be ignored")
	}

	Reset()
}

type testLayoutHooks struct{ NoopLayoutHooks }
type testEditHooks struct{ NoopEditHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
