package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	c := NoopChartHooks{}
	c.OnLoadStart(ctx, "lifeexp")
	c.OnLoadComplete(ctx, "lifeexp", 31, time.Millisecond, nil)
	c.OnLoadComplete(ctx, "housing", 0, time.Millisecond, errors.New("boom"))
	c.OnStep(ctx, "lifeexp", "asia")
	c.OnRelayout(ctx, "housing", 830, 450, time.Millisecond)

	ch := NoopCacheHooks{}
	ch.OnCacheHit(ctx, "artifact")
	ch.OnCacheMiss(ctx, "artifact")
	ch.OnCacheSet(ctx, "artifact", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "example.com", "/countries.csv")
	h.OnResponse(ctx, "GET", "example.com", "/countries.csv", 200, time.Second)
	h.OnError(ctx, "GET", "example.com", "/countries.csv", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Chart().(NoopChartHooks); !ok {
		t.Error("Chart() should return NoopChartHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customChart := &testChartHooks{}
	SetChartHooks(customChart)
	if Chart() != customChart {
		t.Error("SetChartHooks should set custom hooks")
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
	if _, ok := Chart().(NoopChartHooks); !ok {
		t.Error("Reset() should restore NoopChartHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &testChartHooks{}
	SetChartHooks(custom)
	SetChartHooks(nil)

	if Chart() != custom {
		t.Error("SetChartHooks(nil) should be ignored")
	}
}

type testChartHooks struct{ NoopChartHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
