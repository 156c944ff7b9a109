package libcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/roombooker/internal/booking"
)

var testReservation = booking.Reservation{
	Room: booking.Room{EID: 18520, Name: "LB 257 - Croatia", Priority: 1},
	Slots: []booking.Slot{
		{Start: "2024-09-02 13:00:00", End: "2024-09-02 13:30:00", SeatID: "41001", LID: 2161, EID: 18520, Checksum: "aaa111"},
		{Start: "2024-09-02 13:30:00", End: "2024-09-02 14:00:00", SeatID: "41001", LID: 2161, EID: 18520, Checksum: "bbb222"},
	},
}

// fakeSite replays the whole booking flow: cart, auth interstitial, the
// three SSO hops, and checkout.
type fakeSite struct {
	mux *http.ServeMux
	srv *httptest.Server

	authenticated bool
	checkoutCode  int
	checkoutBody  string

	cartForm     url.Values
	exchangeQ    url.Values
	loginForm    url.Values
	relayForm    url.Values
	checkoutForm url.Values
}

func newFakeSite(t *testing.T) *fakeSite {
	f := &fakeSite{mux: http.NewServeMux(), checkoutCode: 200, checkoutBody: `{"success":true}`}
	f.srv = httptest.NewServer(f.mux)
	t.Cleanup(f.srv.Close)

	f.mux.HandleFunc("/ajax/space/createcart", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.cartForm = r.PostForm
		fmt.Fprint(w, `{"redirect":"/r/checkout"}`)
	})
	f.mux.HandleFunc("/r/checkout", func(w http.ResponseWriter, r *http.Request) {
		if f.authenticated {
			fmt.Fprint(w, `<html><body>Your cart</body></html>`)
			return
		}
		fmt.Fprintf(w, `<html><body><h2>Redirecting ...</h2>
<form action="%s/sso/exchange" method="get">
<input type="hidden" name="appToken" value="tok-123">
<input type="hidden" name="returnTo" value="/r/checkout">
</form></body></html>`, f.srv.URL)
	})
	f.mux.HandleFunc("/sso/exchange", func(w http.ResponseWriter, r *http.Request) {
		f.exchangeQ = r.URL.Query()
		fmt.Fprint(w, `<html><body>
<form action="/adfs/ls/" method="post">
<input type="text" name="UserName" value="">
<input type="password" name="Password" value="">
</form></body></html>`)
	})
	f.mux.HandleFunc("/adfs/ls/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.loginForm = r.PostForm
		fmt.Fprintf(w, `<html><body>
<form action="%s/sso/relay" method="post">
<input type="hidden" name="SAMLResponse" value="blob==">
<input type="hidden" name="RelayState" value="rs-1">
<input type="submit" name="Continue" value="Continue">
</form></body></html>`, f.srv.URL)
	})
	f.mux.HandleFunc("/sso/relay", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.relayForm = r.PostForm
		f.authenticated = true
		fmt.Fprint(w, "ok")
	})
	f.mux.HandleFunc("/ajax/equipment/checkout", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.checkoutForm = r.PostForm
		w.WriteHeader(f.checkoutCode)
		fmt.Fprint(w, f.checkoutBody)
	})
	return f
}

func (f *fakeSite) client(t *testing.T) *Client {
	c, err := New(Options{
		SiteURL:    f.srv.URL,
		AuthURL:    f.srv.URL,
		LocationID: 2161,
		Creds:      Credentials{Username: "someone", Password: "hunter2"},
	})
	require.NoError(t, err)
	return c
}

func TestSubmitConfirmedWithLogin(t *testing.T) {
	site := newFakeSite(t)
	c := site.client(t)

	outcome, err := c.Submit(context.Background(), testReservation)
	require.NoError(t, err)
	require.Equal(t, booking.OutcomeConfirmed, outcome)

	// cart carries the fixed fields plus each slot positionally
	require.Equal(t, "true", site.cartForm.Get("libAuth"))
	require.Equal(t, "true", site.cartForm.Get("blowAwayCart"))
	require.Equal(t, "14", site.cartForm.Get("method"))
	require.Equal(t, "2024-09-02 13:00:00", site.cartForm.Get("bookings[0][start]"))
	require.Equal(t, "bbb222", site.cartForm.Get("bookings[1][checksum]"))
	require.Equal(t, "18520", site.cartForm.Get("bookings[1][eid]"))
	require.Equal(t, "2161", site.cartForm.Get("bookings[0][lid]"))

	// hop 1 re-issued every redirect-page input as query params
	require.Equal(t, "tok-123", site.exchangeQ.Get("appToken"))
	require.Equal(t, "/r/checkout", site.exchangeQ.Get("returnTo"))

	// hop 2 posted our credentials with the fixed auth method
	require.Equal(t, "someone", site.loginForm.Get("UserName"))
	require.Equal(t, "hunter2", site.loginForm.Get("Password"))
	require.Equal(t, "FormsAuthentication", site.loginForm.Get("AuthMethod"))

	// hop 3 relayed only the hidden inputs
	require.Equal(t, "blob==", site.relayForm.Get("SAMLResponse"))
	require.Equal(t, "rs-1", site.relayForm.Get("RelayState"))
	require.Empty(t, site.relayForm.Get("Continue"))

	// checkout fixed fields
	require.Equal(t, "logout", site.checkoutForm.Get("logoutUrl"))
	require.Equal(t, "0", site.checkoutForm.Get("session"))
}

func TestSubmitSkipsLoginWhenAuthenticated(t *testing.T) {
	site := newFakeSite(t)
	site.authenticated = true
	c := site.client(t)

	outcome, err := c.Submit(context.Background(), testReservation)
	require.NoError(t, err)
	require.Equal(t, booking.OutcomeConfirmed, outcome)
	require.Nil(t, site.loginForm)
}

func TestSubmitAlreadyBooked(t *testing.T) {
	site := newFakeSite(t)
	site.authenticated = true
	site.checkoutCode = 500
	site.checkoutBody = "<html>Sorry, this space is already reserved.</html>"

	outcome, err := site.client(t).Submit(context.Background(), testReservation)
	require.NoError(t, err)
	require.Equal(t, booking.OutcomeAlreadyBooked, outcome)
}

func TestSubmitUnexpectedCheckoutResponse(t *testing.T) {
	site := newFakeSite(t)
	site.authenticated = true
	site.checkoutCode = 400
	site.checkoutBody = "bad cart"

	outcome, err := site.client(t).Submit(context.Background(), testReservation)
	require.Error(t, err)
	require.Equal(t, booking.OutcomeFailed, outcome)
	require.False(t, errors.Is(err, ErrAuthFailed))
}

func TestSubmitServerErrorWithoutMarkerFails(t *testing.T) {
	site := newFakeSite(t)
	site.authenticated = true
	site.checkoutCode = 500
	site.checkoutBody = "internal error"

	outcome, err := site.client(t).Submit(context.Background(), testReservation)
	require.Error(t, err)
	require.Equal(t, booking.OutcomeFailed, outcome)
}

func TestSubmitAuthPageWithoutForm(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/ajax/space/createcart", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"redirect":"/r/checkout"}`)
	})
	mux.HandleFunc("/r/checkout", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h2>Redirecting ...</h2><p>but no form</p></body></html>`)
	})

	c, err := New(Options{SiteURL: srv.URL, AuthURL: srv.URL, LocationID: 2161})
	require.NoError(t, err)

	outcome, err := c.Submit(context.Background(), testReservation)
	require.Equal(t, booking.OutcomeFailed, outcome)
	require.True(t, errors.Is(err, ErrAuthFailed))
}

func TestSubmitCartWithoutRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"no dice"}`)
	}))
	defer srv.Close()

	c, err := New(Options{SiteURL: srv.URL, AuthURL: srv.URL, LocationID: 2161})
	require.NoError(t, err)

	outcome, err := c.Submit(context.Background(), testReservation)
	require.Error(t, err)
	require.Equal(t, booking.OutcomeFailed, outcome)
}
