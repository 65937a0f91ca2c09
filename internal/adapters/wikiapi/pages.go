package wikiapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
)

// CategoryNamespace is the namespace id of category pages.
const CategoryNamespace = 14

// NormalizeTitle trims title and replaces spaces with underscores.
func NormalizeTitle(title string) string {
	return strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
}

// usePage normalizes title and makes it the page in use. An empty title
// selects the page used by the previous call.
func (c *Client) usePage(title string) (string, error) {
	title = NormalizeTitle(title)
	c.mu.Lock()
	defer c.mu.Unlock()
	if title != "" {
		c.pageInUse = title
	}
	if c.pageInUse == "" {
		return "", ErrNoTitle
	}
	return c.pageInUse, nil
}

// PageInUse returns the title used by the last page call.
func (c *Client) PageInUse() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageInUse
}

func query(kv ...string) string {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	for i := 0; i+1 < len(kv); i += 2 {
		args.Set(kv[i], kv[i+1])
	}
	return "?" + args.String()
}

func form(kv ...string) *fasthttp.Args {
	args := &fasthttp.Args{}
	for i := 0; i+1 < len(kv); i += 2 {
		args.Set(kv[i], kv[i+1])
	}
	return args
}

func (c *Client) apiJSON(ctx context.Context, relURL string, body *fasthttp.Args) (gjson.Result, error) {
	var (
		raw []byte
		err error
	)
	if body == nil {
		raw, err = c.Get(ctx, relURL)
	} else {
		raw, err = c.Post(ctx, relURL, body)
	}
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("%w: %s is not json", ErrBadResponse, relURL)
	}
	res := gjson.ParseBytes(raw)
	if e := res.Get("error"); e.Exists() {
		return res, fmt.Errorf("%w: %s: %s", ErrBadResponse, e.Get("code").String(), e.Get("info").String())
	}
	return res, nil
}

// Login authenticates through api.php. When the wiki asks for a token the
// request is repeated with it. Session cookies are kept on success.
func (c *Client) Login(ctx context.Context, user, password string) error {
	c.logger.Info("Starting login", "user", user, "wiki", c.cfg.BaseURL)
	c.resetCookies()

	data := form("action", "login", "lgname", user, "lgpassword", password, "format", "json")
	res, err := c.apiJSON(ctx, APIPath, data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	login := res.Get("login")
	if login.Get("result").String() == "NeedToken" {
		data.Set("lgtoken", login.Get("token").String())
		prefix := login.Get("cookieprefix").String()
		if sid := login.Get("sessionid"); sid.Exists() {
			c.setCookie(prefix+"_session", sid.String())
		}
		res, err = c.apiJSON(ctx, APIPath, data)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrLoginFailed, err)
		}
		login = res.Get("login")
	}

	result := login.Get("result").String()
	if result != "Success" {
		c.logger.Error("Login rejected", "user", user, "result", result)
		return fmt.Errorf("%w: result %q", ErrLoginFailed, result)
	}

	prefix := login.Get("cookieprefix").String()
	for _, kv := range [][2]string{
		{prefix + "_session", login.Get("sessionid").String()},
		{prefix + "UserName", login.Get("lgusername").String()},
		{prefix + "UserID", login.Get("lguserid").String()},
		{prefix + "Token", login.Get("lgtoken").String()},
	} {
		if kv[1] != "" {
			c.setCookie(kv[0], kv[1])
		}
	}
	c.logger.Info("Login succeeded", "user", login.Get("lgusername").String())
	return nil
}

// FetchRaw returns the wiki source of a page.
func (c *Client) FetchRaw(ctx context.Context, title string) (string, error) {
	page, err := c.usePage(title)
	if err != nil {
		return "", err
	}
	body, err := c.Get(ctx, IndexPath+query("action", "raw", "title", page))
	if err != nil {
		return "", fmt.Errorf("fetch raw %s: %w", page, err)
	}
	return string(body), nil
}

// FetchRendered returns the rendered HTML body of a page without the skin.
func (c *Client) FetchRendered(ctx context.Context, title string) (string, error) {
	page, err := c.usePage(title)
	if err != nil {
		return "", err
	}
	body, err := c.Get(ctx, IndexPath+query("action", "render", "title", page))
	if err != nil {
		return "", fmt.Errorf("fetch rendered %s: %w", page, err)
	}
	return string(body), nil
}

// FetchFull returns the complete HTML page as served to readers.
func (c *Client) FetchFull(ctx context.Context, title string) (string, error) {
	page, err := c.usePage(title)
	if err != nil {
		return "", err
	}
	body, err := c.Get(ctx, IndexPath+query("title", page))
	if err != nil {
		return "", fmt.Errorf("fetch full %s: %w", page, err)
	}
	return string(body), nil
}

// PageCategories returns the category names of a page without the
// namespace prefix.
func (c *Client) PageCategories(ctx context.Context, title string) ([]string, error) {
	page, err := c.usePage(title)
	if err != nil {
		return nil, err
	}
	res, err := c.apiJSON(ctx, APIPath+query(
		"action", "query", "format", "json", "prop", "categories", "cllimit", "max", "titles", page,
	), nil)
	if err != nil {
		return nil, fmt.Errorf("categories of %s: %w", page, err)
	}

	var names []string
	res.Get("query.pages").ForEach(func(_, p gjson.Result) bool {
		for _, cat := range p.Get("categories").Array() {
			if cat.Get("ns").Int() != CategoryNamespace {
				continue
			}
			names = append(names, stripNamespace(cat.Get("title").String()))
		}
		return true
	})
	return names, nil
}

// Info returns the prop=info record of a page.
func (c *Client) Info(ctx context.Context, title string) (map[string]interface{}, error) {
	page, err := c.usePage(title)
	if err != nil {
		return nil, err
	}
	res, err := c.apiJSON(ctx, APIPath+query(
		"action", "query", "format", "json", "prop", "info", "titles", page,
	), nil)
	if err != nil {
		return nil, fmt.Errorf("info of %s: %w", page, err)
	}

	var last gjson.Result
	res.Get("query.pages").ForEach(func(_, p gjson.Result) bool {
		last = p
		return true
	})
	if !last.Exists() || last.Get("missing").Exists() {
		return nil, fmt.Errorf("%w: %s", ErrNoPage, page)
	}
	info, ok := last.Value().(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: info of %s", ErrBadResponse, page)
	}
	return info, nil
}

// InfoProp returns one property of the prop=info record, e.g. "touched".
func (c *Client) InfoProp(ctx context.Context, title, prop string) (interface{}, error) {
	info, err := c.Info(ctx, title)
	if err != nil {
		return nil, err
	}
	v, ok := info[prop]
	if !ok {
		return nil, fmt.Errorf("%w: no property %q", ErrBadResponse, prop)
	}
	return v, nil
}

// CategoryMembers lists the main namespace pages of a category, following
// continuation until the list is complete.
func (c *Client) CategoryMembers(ctx context.Context, category string) ([]string, error) {
	category = NormalizeTitle(stripNamespace(category))
	if category == "" {
		return nil, ErrNoTitle
	}

	var (
		titles []string
		cont   string
	)
	for {
		kv := []string{
			"action", "query", "format", "json", "list", "categorymembers",
			"cmtitle", "Category:" + category, "cmnamespace", "0", "cmlimit", "max",
		}
		if cont != "" {
			kv = append(kv, "cmcontinue", cont)
		}
		res, err := c.apiJSON(ctx, APIPath+query(kv...), nil)
		if err != nil {
			return nil, fmt.Errorf("members of %s: %w", category, err)
		}
		for _, m := range res.Get("query.categorymembers").Array() {
			titles = append(titles, m.Get("title").String())
		}
		cont = res.Get("continue.cmcontinue").String()
		if cont == "" {
			break
		}
	}
	c.logger.Debug("Listed category", "category", category, "members", len(titles))
	return titles, nil
}

// Edit replaces the text of a page. An empty summary uses DefaultSummary.
func (c *Client) Edit(ctx context.Context, title, text, summary string) error {
	page, err := c.usePage(title)
	if err != nil {
		return err
	}
	if summary == "" {
		summary = DefaultSummary
	}

	tokens, err := c.apiJSON(ctx, APIPath+query("action", "query", "format", "json", "meta", "tokens"), nil)
	if err != nil {
		return fmt.Errorf("%w: token for %s: %w", ErrEditFailed, page, err)
	}
	token := tokens.Get("query.tokens.csrftoken").String()
	if token == "" {
		return fmt.Errorf("%w: no csrf token", ErrEditFailed)
	}

	res, err := c.apiJSON(ctx, APIPath+query("action", "edit", "format", "json", "title", page),
		form("summary", summary, "text", text, "token", token))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEditFailed, page, err)
	}
	result := res.Get("edit.result")
	if !result.Exists() {
		return fmt.Errorf("%w: %s: %w", ErrEditFailed, page, ErrBadResponse)
	}
	if result.String() != "Success" {
		return fmt.Errorf("%w: %s: result %q", ErrEditFailed, page, result.String())
	}
	c.logger.Info("Page edited", "title", page, "summary", summary, "bytes", len(text))
	return nil
}

// WriteText implements ports.PageWriter.
func (c *Client) WriteText(ctx context.Context, title, text, summary string) error {
	return c.Edit(ctx, title, text, summary)
}

func stripNamespace(title string) string {
	if i := strings.Index(title, ":"); i >= 0 {
		return title[i+1:]
	}
	return title
}
