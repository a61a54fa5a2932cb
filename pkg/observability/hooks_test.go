package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopRenderHooks{}
	r.OnDrawStart(ctx, "usa")
	r.OnDrawComplete(ctx, "usa", 51, time.Millisecond, nil)
	r.OnLayer(ctx, "bubbles", 3, time.Millisecond, nil)
	r.OnExport(ctx, "png", 2048, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "topology")
	c.OnCacheMiss(ctx, "overlay")
	c.OnCacheSet(ctx, "svg", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "example.com", "/world.topo.json")
	h.OnResponse(ctx, "GET", "example.com", "/world.topo.json", 200, time.Second)
	h.OnError(ctx, "GET", "example.com", "/world.topo.json", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should return NoopRenderHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	hooks := NewLogHooks(log.New(&bytes.Buffer{}))
	SetRenderHooks(hooks)
	SetCacheHooks(hooks)
	SetHTTPHooks(hooks)
	if Render() != RenderHooks(hooks) || Cache() != CacheHooks(hooks) || HTTP() != HTTPHooks(hooks) {
		t.Error("Set*Hooks should install the given hooks")
	}

	SetRenderHooks(nil)
	if Render() != RenderHooks(hooks) {
		t.Error("SetRenderHooks(nil) should be ignored")
	}

	Reset()
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Reset() should restore NoopRenderHooks")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)
	h := NewLogHooks(logger)
	ctx := context.Background()

	h.OnDrawComplete(ctx, "world", 14, time.Millisecond, nil)
	h.OnLayer(ctx, "arcs", 0, 0, errors.New("arcs expects an array"))
	h.OnCacheHit(ctx, "topology")

	out := buf.String()
	for _, want := range []string{"draw complete", "scope=world", "layer failed", "cache hit"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
