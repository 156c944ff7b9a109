package libcal

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// ErrAuthFailed marks a broken SSO hop: a page that should carry the
// next form of the chain but does not. Once this happens the shared
// session is unusable, so callers treat it as fatal for the whole batch.
var ErrAuthFailed = errors.New("sso authentication failed")

// login walks the three form hops that turn an application redirect page
// into an authenticated session:
//
//  1. the redirect page's form is re-issued as a GET with all its inputs
//     as query parameters, exchanging the application token for SSO
//     context (and setting the site cookie);
//  2. the resulting institutional login form gets our credentials POSTed
//     to its action, which is relative to the auth host;
//  3. the relay page's hidden inputs (only the hidden ones: the visible
//     submit control corrupts the POST) are sent to its action URL.
//
// All hops ride the client's cookie jar, so after a successful walk the
// rest of the session is authenticated.
func (c *Client) login(ctx context.Context, redirectPage []byte) error {
	action, inputs, err := parseForm(redirectPage, false)
	if err != nil {
		return fmt.Errorf("redirect page: %w", err)
	}
	res, err := c.http.R().SetContext(ctx).SetQueryParams(inputs).Get(action)
	if err != nil {
		return fmt.Errorf("sso token exchange: %w", err)
	}

	action, _, err = parseForm(res.Body(), false)
	if err != nil {
		return fmt.Errorf("login page: %w", err)
	}
	res, err = c.http.R().SetContext(ctx).SetFormData(map[string]string{
		"UserName":   c.creds.Username,
		"Password":   c.creds.Password,
		"AuthMethod": "FormsAuthentication",
	}).Post(c.authBase + action)
	if err != nil {
		return fmt.Errorf("sso credential submit: %w", err)
	}

	action, hidden, err := parseForm(res.Body(), true)
	if err != nil {
		return fmt.Errorf("relay page: %w", err)
	}
	if _, err := c.http.R().SetContext(ctx).SetFormData(hidden).Post(action); err != nil {
		return fmt.Errorf("sso relay submit: %w", err)
	}
	return nil
}

// parseForm pulls the first form's action URL and its input name/value
// pairs out of an HTML page. With hiddenOnly set, visible inputs are
// skipped. A page without a form or action is an ErrAuthFailed.
func parseForm(page []byte, hiddenOnly bool) (action string, inputs map[string]string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", nil, fmt.Errorf("%w: parse html: %v", ErrAuthFailed, err)
	}
	form := doc.Find("form").First()
	if form.Length() == 0 {
		return "", nil, fmt.Errorf("%w: no form in page", ErrAuthFailed)
	}
	action, ok := form.Attr("action")
	if !ok || action == "" {
		return "", nil, fmt.Errorf("%w: form has no action", ErrAuthFailed)
	}

	sel := "input"
	if hiddenOnly {
		sel = "input[type=hidden]"
	}
	inputs = map[string]string{}
	doc.Find(sel).Each(func(_ int, in *goquery.Selection) {
		name, ok := in.Attr("name")
		if !ok {
			return
		}
		inputs[name] = in.AttrOr("value", "")
	})
	return action, inputs, nil
}
