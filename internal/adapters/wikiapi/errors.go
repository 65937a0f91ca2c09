package wikiapi

import "errors"

// Errors returned by the client. They are wrapped with context; use errors.Is.
var (
	ErrLoginFailed = errors.New("wiki login failed")
	ErrEditFailed  = errors.New("wiki edit failed")
	ErrHTTPStatus  = errors.New("unexpected http status")
	ErrBadResponse = errors.New("malformed api response")
	ErrNoTitle     = errors.New("no page title given and no page in use")
	ErrNoPage      = errors.New("page not found")
)
