package mediawikinav

import (
	"context"
	"net"
	"testing"

	"github.com/baditaflorin/l"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func testLogger(t *testing.T) l.Logger {
	t.Helper()
	lg, err := createDefaultLogger()
	require.NoError(t, err)
	t.Cleanup(func() { _ = lg.Close() })
	return lg
}

// rawWiki serves index.php?action=raw for a fixed set of pages.
func rawWiki(t *testing.T, pages map[string]string) Doer {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	go func() {
		_ = fasthttp.Serve(ln, func(ctx *fasthttp.RequestCtx) {
			text, ok := pages[string(ctx.QueryArgs().Peek("title"))]
			if string(ctx.Path()) != "/w/index.php" || !ok {
				ctx.SetStatusCode(fasthttp.StatusNotFound)
				return
			}
			ctx.SetBodyString(text)
		})
	}()
	t.Cleanup(func() { _ = ln.Close() })
	return &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoBaseURL)
}

func TestPreviewAndDryRun(t *testing.T) {
	doer := rawWiki(t, map[string]string{
		"Atom": "Lead {{Infobox|heavy   metal|mass =  12 u}} tail",
	})
	nav, err := New(context.Background(), "http://wiki.test/w",
		WithDoer(doer),
		WithDerived("kx_positional"),
		WithLogger(testLogger(t)),
	)
	require.NoError(t, err)

	raw, err := nav.Raw(context.Background(), "Atom")
	require.NoError(t, err)
	assert.Contains(t, raw, "heavy   metal")

	res, err := nav.NormalizePage(context.Background(), "Atom", "", true)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "Lead {{Infobox|heavy metal\n|mass=12 u\n|kx_positional=1\n}} tail", res.After)

	_, err = nav.Preview(context.Background(), "Missing")
	assert.ErrorIs(t, err, ErrHTTPStatus)
}
