package libcal

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/example/roombooker/internal/booking"
)

// Body markers the site uses instead of useful status codes.
// authRedirectMarker appears on the interstitial page that bounces an
// unauthenticated cart to SSO; alreadyReservedMarker shows up in the
// 5xx body the checkout endpoint returns for a day we already hold.
var (
	authRedirectMarker    = regexp.MustCompile(`<h2>Redirecting \.\.\.</h2>`)
	alreadyReservedMarker = regexp.MustCompile(`Sorry`)
)

// Submit pushes one matched reservation through the site's booking flow:
// create a cart for the slots, follow the cart's redirect, run the SSO
// chain if the redirect landed on the auth interstitial, then check out.
// The outcome classifies the checkout response; ErrAuthFailed wrapped in
// the returned error means the whole session is dead.
func (c *Client) Submit(ctx context.Context, rsv booking.Reservation) (booking.Outcome, error) {
	redirect, err := c.createCart(ctx, rsv.Slots)
	if err != nil {
		return booking.OutcomeFailed, err
	}

	res, err := c.http.R().SetContext(ctx).Get(c.absolute(redirect))
	if err != nil {
		return booking.OutcomeFailed, fmt.Errorf("cart redirect: %w", err)
	}
	if authRedirectMarker.Match(res.Body()) {
		if err := c.login(ctx, res.Body()); err != nil {
			return booking.OutcomeFailed, err
		}
	}

	return c.checkout(ctx)
}

// createCart posts the slot run, positionally indexed, plus the fixed
// cart-control fields. The response is JSON holding the path to follow
// next.
func (c *Client) createCart(ctx context.Context, slots []booking.Slot) (string, error) {
	form := map[string]string{
		"libAuth":      "true",
		"blowAwayCart": "true",
		"method":       "14",
		"returnUrl":    c.returnPath(),
	}
	for i, s := range slots {
		form[fmt.Sprintf("bookings[%d][start]", i)] = s.Start
		form[fmt.Sprintf("bookings[%d][end]", i)] = s.End
		form[fmt.Sprintf("bookings[%d][seat_id]", i)] = s.SeatID
		form[fmt.Sprintf("bookings[%d][lid]", i)] = strconv.Itoa(s.LID)
		form[fmt.Sprintf("bookings[%d][eid]", i)] = strconv.Itoa(s.EID)
		form[fmt.Sprintf("bookings[%d][checksum]", i)] = s.Checksum
	}

	res, err := c.http.R().SetContext(ctx).SetFormData(form).Post(c.site + "/ajax/space/createcart")
	if err != nil {
		return "", fmt.Errorf("create cart: %w", err)
	}
	var out struct {
		Redirect string `json:"redirect"`
	}
	if err := json.Unmarshal(res.Body(), &out); err != nil {
		return "", fmt.Errorf("create cart: decode response: %w", err)
	}
	if out.Redirect == "" {
		return "", fmt.Errorf("create cart: response has no redirect (status %d)", res.StatusCode())
	}
	return out.Redirect, nil
}

func (c *Client) checkout(ctx context.Context) (booking.Outcome, error) {
	res, err := c.http.R().SetContext(ctx).SetFormData(map[string]string{
		"forcedEmail": "",
		"returnUrl":   c.returnPath(),
		"logoutUrl":   "logout",
		"session":     "0",
	}).Post(c.site + "/ajax/equipment/checkout")
	if err != nil {
		return booking.OutcomeFailed, fmt.Errorf("checkout: %w", err)
	}
	return classifyCheckout(res.StatusCode(), res.Body())
}

// classifyCheckout maps the checkout response onto an outcome. The site
// signals "you already hold this day" as a server error whose body
// apologizes, which is terminal, not retryable. Anything else that is
// not a 2xx is a genuine failure and the caller leaves the day
// unrecorded so a later run retries it.
func classifyCheckout(status int, body []byte) (booking.Outcome, error) {
	switch {
	case status >= 500 && alreadyReservedMarker.Match(body):
		return booking.OutcomeAlreadyBooked, nil
	case status >= 200 && status < 300:
		return booking.OutcomeConfirmed, nil
	default:
		return booking.OutcomeFailed, fmt.Errorf("checkout: unexpected response (status %d)", status)
	}
}

// absolute resolves a redirect path against the site root. The cart
// endpoint usually hands back a bare path but has been seen returning
// full URLs.
func (c *Client) absolute(redirect string) string {
	if strings.HasPrefix(redirect, "http://") || strings.HasPrefix(redirect, "https://") {
		return redirect
	}
	return c.site + redirect
}
