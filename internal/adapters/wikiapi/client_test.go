package wikiapi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginHandshake(t *testing.T) {
	w := newFakeWiki()
	c := w.start(t)

	require.NoError(t, c.Login(context.Background(), "Bot", "secret"))

	cookies := c.Cookies()
	assert.Equal(t, "sess2", cookies["wiki_session"])
	assert.Equal(t, "Bot", cookies["wikiUserName"])
	assert.Equal(t, "7", cookies["wikiUserID"])
	assert.Equal(t, "ltok", cookies["wikiToken"])
}

func TestLoginFailureIsReturned(t *testing.T) {
	w := newFakeWiki()

	c, err := NewWithLogin(context.Background(), "http://wiki.test/w", "Bot", "wrong", WithDoer(w.start(t).http))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.Contains(t, err.Error(), "WrongPass")
	require.NotNil(t, c)
}

func TestNewWithLoginWithoutUser(t *testing.T) {
	c, err := NewWithLogin(context.Background(), "http://wiki.test/w", "", "")

	require.NoError(t, err)
	assert.Equal(t, "http://wiki.test/w", c.BaseURL())
}

func TestFetchPages(t *testing.T) {
	w := newFakeWiki()
	c := w.start(t)
	ctx := context.Background()

	raw, err := c.FetchRaw(ctx, " Main Page ")
	require.NoError(t, err)
	assert.Equal(t, "See {{Cite|Author X | 2020|page=5}} for details.", raw)
	assert.Equal(t, "Main_Page", c.PageInUse())

	rendered, err := c.FetchRendered(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "<p>Main_Page</p>", rendered)

	full, err := c.FetchFull(ctx, "Other")
	require.NoError(t, err)
	assert.Equal(t, "<html>Other</html>", full)
}

func TestFetchRawMissingPage(t *testing.T) {
	c := newFakeWiki().start(t)

	_, err := c.FetchRaw(context.Background(), "Missing")

	assert.ErrorIs(t, err, ErrHTTPStatus)
}

func TestNoTitle(t *testing.T) {
	c := New("http://wiki.test/w")

	_, err := c.FetchRaw(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNoTitle)

	_, err = c.CategoryMembers(context.Background(), "Category:")
	assert.ErrorIs(t, err, ErrNoTitle)
}

func TestPageCategories(t *testing.T) {
	c := newFakeWiki().start(t)

	names, err := c.PageCategories(context.Background(), "Main Page")

	require.NoError(t, err)
	assert.Equal(t, []string{"Physics", "Old pages"}, names)
}

func TestInfo(t *testing.T) {
	c := newFakeWiki().start(t)
	ctx := context.Background()

	info, err := c.Info(ctx, "Main_Page")
	require.NoError(t, err)
	assert.Equal(t, "Main Page", info["title"])

	touched, err := c.InfoProp(ctx, "", "touched")
	require.NoError(t, err)
	assert.Equal(t, "2020-01-01T00:00:00Z", touched)

	_, err = c.InfoProp(ctx, "", "nothing")
	assert.ErrorIs(t, err, ErrBadResponse)

	_, err = c.Info(ctx, "Nope")
	assert.ErrorIs(t, err, ErrNoPage)
}

func TestCategoryMembersFollowsContinuation(t *testing.T) {
	c := newFakeWiki().start(t)

	titles, err := c.CategoryMembers(context.Background(), "Category:Physics")

	require.NoError(t, err)
	assert.Equal(t, []string{"Atom", "Boson", "Quark"}, titles)
}

func TestEdit(t *testing.T) {
	w := newFakeWiki()
	c := w.start(t)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "Bot", "secret"))

	require.NoError(t, c.WriteText(ctx, "Main Page", "new text", ""))

	assert.Equal(t, "new text", w.pages["Main_Page"])
	assert.Equal(t, []string{"Main_Page:#mn-edit"}, w.edits)
}

func TestEditWithoutSessionFails(t *testing.T) {
	c := newFakeWiki().start(t)

	err := c.Edit(context.Background(), "Main Page", "x", "summary")

	assert.ErrorIs(t, err, ErrEditFailed)
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestRetriesServerErrors(t *testing.T) {
	w := newFakeWiki()
	w.failures = 2
	c := w.start(t)

	body, err := c.Get(context.Background(), "/flaky")

	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, 3, w.hits["/w/flaky"])
}

func TestRetriesGiveUp(t *testing.T) {
	w := newFakeWiki()
	w.failures = 10
	c := w.start(t)

	_, err := c.Get(context.Background(), "/flaky")

	assert.ErrorIs(t, err, ErrHTTPStatus)
	assert.Equal(t, 3, w.hits["/w/flaky"])
}

func TestZeroTimeoutKeepsDefault(t *testing.T) {
	c := newFakeWiki().start(t, WithTimeout(0))

	raw, err := c.FetchRaw(context.Background(), "Main Page")

	require.NoError(t, err)
	assert.Contains(t, raw, "{{Cite")
	assert.Equal(t, DefaultTimeout, c.cfg.Timeout)
}

func TestZeroRetryBaseKeepsDefault(t *testing.T) {
	w := newFakeWiki()
	w.failures = 1
	c := w.start(t, WithRetries(1, 0))

	var body []byte
	var err error
	require.NotPanics(t, func() {
		body, err = c.Get(context.Background(), "/flaky")
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, DefaultRetryBase, c.cfg.RetryBase)
}

func TestCancelledContext(t *testing.T) {
	c := newFakeWiki().start(t, WithTimeout(time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchRaw(ctx, "Main Page")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "Main_Page", NormalizeTitle("  Main Page "))
	assert.Equal(t, "", NormalizeTitle(" "))
}
