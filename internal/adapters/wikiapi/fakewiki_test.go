package wikiapi

import (
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

// fakeWiki serves a tiny subset of api.php and index.php from memory.
type fakeWiki struct {
	mu       sync.Mutex
	pages    map[string]string
	edits    []string
	failures int
	hits     map[string]int
}

func newFakeWiki() *fakeWiki {
	return &fakeWiki{
		pages: map[string]string{
			"Main_Page": "See {{Cite|Author X | 2020|page=5}} for details.",
		},
		hits: make(map[string]int),
	}
}

// start serves the fake on an in-memory listener and returns a client bound to it.
func (w *fakeWiki) start(t *testing.T, opts ...Option) *Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	go func() {
		_ = fasthttp.Serve(ln, w.handle)
	}()
	t.Cleanup(func() { _ = ln.Close() })

	doer := &fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return ln.Dial() },
	}
	opts = append([]Option{WithDoer(doer), WithRetries(2, time.Millisecond)}, opts...)
	return New("http://wiki.test/w/", opts...)
}

func arg(ctx *fasthttp.RequestCtx, key string) string {
	if v := ctx.QueryArgs().Peek(key); len(v) > 0 {
		return string(v)
	}
	return string(ctx.PostArgs().Peek(key))
}

func (w *fakeWiki) handle(ctx *fasthttp.RequestCtx) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hits[string(ctx.Path())]++

	switch string(ctx.Path()) {
	case "/w/api.php":
		ctx.SetContentType("application/json")
		w.api(ctx)
	case "/w/index.php":
		w.index(ctx)
	case "/w/flaky":
		if w.failures > 0 {
			w.failures--
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(ctx, "ok")
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func (w *fakeWiki) index(ctx *fasthttp.RequestCtx) {
	title := arg(ctx, "title")
	switch arg(ctx, "action") {
	case "raw":
		text, ok := w.pages[title]
		if !ok {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			return
		}
		fmt.Fprint(ctx, text)
	case "render":
		fmt.Fprintf(ctx, "<p>%s</p>", title)
	default:
		fmt.Fprintf(ctx, "<html>%s</html>", title)
	}
}

func (w *fakeWiki) api(ctx *fasthttp.RequestCtx) {
	switch arg(ctx, "action") {
	case "login":
		w.login(ctx)
	case "edit":
		if arg(ctx, "token") != "csrf+\\" || len(ctx.Request.Header.Cookie("wiki_session")) == 0 {
			fmt.Fprint(ctx, `{"error":{"code":"badtoken","info":"Invalid CSRF token."}}`)
			return
		}
		title := arg(ctx, "title")
		w.pages[title] = arg(ctx, "text")
		w.edits = append(w.edits, title+":"+arg(ctx, "summary"))
		fmt.Fprintf(ctx, `{"edit":{"result":"Success","title":%q}}`, title)
	case "query":
		w.query(ctx)
	default:
		fmt.Fprint(ctx, `{"error":{"code":"unknown_action","info":"Unrecognized value"}}`)
	}
}

func (w *fakeWiki) login(ctx *fasthttp.RequestCtx) {
	switch {
	case arg(ctx, "lgtoken") == "":
		fmt.Fprint(ctx, `{"login":{"result":"NeedToken","token":"tok123","cookieprefix":"wiki","sessionid":"sess1"}}`)
	case arg(ctx, "lgtoken") != "tok123" || string(ctx.Request.Header.Cookie("wiki_session")) != "sess1":
		fmt.Fprint(ctx, `{"login":{"result":"WrongToken"}}`)
	case arg(ctx, "lgpassword") != "secret":
		fmt.Fprint(ctx, `{"login":{"result":"WrongPass"}}`)
	default:
		fmt.Fprint(ctx, `{"login":{"result":"Success","lguserid":7,"lgusername":"Bot","lgtoken":"ltok","cookieprefix":"wiki","sessionid":"sess2"}}`)
	}
}

func (w *fakeWiki) query(ctx *fasthttp.RequestCtx) {
	switch {
	case arg(ctx, "meta") == "tokens":
		fmt.Fprint(ctx, `{"query":{"tokens":{"csrftoken":"csrf+\\"}}}`)
	case arg(ctx, "prop") == "categories":
		fmt.Fprint(ctx, `{"query":{"pages":{"12":{"pageid":12,"ns":0,"title":"Main Page","categories":[
			{"ns":14,"title":"Category:Physics"},
			{"ns":14,"title":"Category:Old pages"},
			{"ns":0,"title":"Not a category"}]}}}}`)
	case arg(ctx, "prop") == "info":
		if _, ok := w.pages[arg(ctx, "titles")]; !ok {
			fmt.Fprint(ctx, `{"query":{"pages":{"-1":{"ns":0,"title":"Nope","missing":""}}}}`)
			return
		}
		fmt.Fprint(ctx, `{"query":{"pages":{"12":{"pageid":12,"ns":0,"title":"Main Page","touched":"2020-01-01T00:00:00Z","length":42}}}}`)
	case arg(ctx, "list") == "categorymembers":
		if arg(ctx, "cmtitle") != "Category:Physics" {
			fmt.Fprint(ctx, `{"query":{"categorymembers":[]}}`)
			return
		}
		if arg(ctx, "cmcontinue") == "" {
			fmt.Fprint(ctx, `{"continue":{"cmcontinue":"page|2","continue":"-||"},"query":{"categorymembers":[{"ns":0,"title":"Atom"},{"ns":0,"title":"Boson"}]}}`)
			return
		}
		fmt.Fprint(ctx, `{"query":{"categorymembers":[{"ns":0,"title":"Quark"}]}}`)
	default:
		fmt.Fprint(ctx, `{}`)
	}
}
