package logger

import (
	"context"
	"sync"
)

type annotationsKey struct{}

// Annotations collect fields recorded deep inside a request (cache outcome,
// upstream pages) so the request's summary line can report them.
type Annotations struct {
	mu     sync.Mutex
	fields map[string]any
}

// WithAnnotations attaches an empty annotation set to ctx.
func WithAnnotations(ctx context.Context) (context.Context, *Annotations) {
	if ctx == nil {
		ctx = context.Background()
	}
	a := &Annotations{fields: map[string]any{}}
	return context.WithValue(ctx, annotationsKey{}, a), a
}

// Annotate records key on the set carried by ctx. Without one it does nothing.
func Annotate(ctx context.Context, key string, value any) {
	if ctx == nil {
		return
	}
	a, ok := ctx.Value(annotationsKey{}).(*Annotations)
	if !ok || a == nil {
		return
	}
	a.mu.Lock()
	a.fields[key] = value
	a.mu.Unlock()
}

// Fields returns a copy of the recorded fields.
func (a *Annotations) Fields() map[string]any {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]any, len(a.fields))
	for k, v := range a.fields {
		out[k] = v
	}
	return out
}
