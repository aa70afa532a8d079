package payment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/aniayu/storefront-go/internal/errmsg"
)

type Loader interface {
	Load(ctx context.Context) error
}

// ScriptLoader makes sure the checkout script is reachable. A successful load is
// remembered; a failed one is tried again on the next call.
type ScriptLoader struct {
	URL  string
	HTTP *http.Client

	mu     sync.Mutex
	loaded bool
}

func NewScriptLoader(url string, httpClient *http.Client) *ScriptLoader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ScriptLoader{URL: url, HTTP: httpClient}
}

func (l *ScriptLoader) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", errmsg.ErrScriptLoad, err)
	}
	resp, err := l.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errmsg.ErrScriptLoad, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned %d", errmsg.ErrScriptLoad, l.URL, resp.StatusCode)
	}

	l.loaded = true
	return nil
}

func (l *ScriptLoader) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}
