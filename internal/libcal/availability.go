package libcal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/example/roombooker/internal/booking"
)

// ErrFetch marks availability responses we could not use: transport
// failures, non-2xx statuses, or a page without the expected grid markup.
var ErrFetch = errors.New("availability fetch failed")

// FetchAvailability scrapes the accessible availability grid for one
// date and returns every bookable slot across all rooms, in the grid's
// own (chronological per room) order. An empty result is not an error:
// it just means the day is fully booked. The grid's checkbox inputs
// carry the slot data as data-* attributes.
func (c *Client) FetchAvailability(ctx context.Context, date time.Time) ([]booking.Slot, error) {
	url := fmt.Sprintf("%s/r/accessible/availability?lid=%d&date=%s", c.site, c.lid, date.Format("2006-01-02"))
	res, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrFetch, res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", ErrFetch, err)
	}
	panels := doc.Find("div.panel.panel-default")
	if panels.Length() == 0 {
		return nil, fmt.Errorf("%w: no availability panels in page", ErrFetch)
	}

	var slots []booking.Slot
	var bad error
	panels.Find("input").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		s, err := c.slotFromInput(sel)
		if err != nil {
			bad = fmt.Errorf("%w: %v", ErrFetch, err)
			return false
		}
		slots = append(slots, s)
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return slots, nil
}

// slotFromInput validates and converts one grid checkbox. Every field is
// required; the checksum in particular must round-trip untouched into
// the cart request or the site rejects the booking.
func (c *Client) slotFromInput(sel *goquery.Selection) (booking.Slot, error) {
	s := booking.Slot{
		Start:    sel.AttrOr("data-start", ""),
		End:      sel.AttrOr("data-end", ""),
		SeatID:   sel.AttrOr("data-seat", ""),
		Checksum: sel.AttrOr("data-crc", ""),
		LID:      c.lid, // the grid does not repeat the location id per input
	}
	if s.Start == "" || s.End == "" || s.SeatID == "" || s.Checksum == "" {
		return booking.Slot{}, fmt.Errorf("grid input missing slot attributes")
	}
	if _, err := time.Parse("2006-01-02 15:04:05", s.Start); err != nil {
		return booking.Slot{}, fmt.Errorf("grid input has bad start %q", s.Start)
	}
	eid, err := strconv.Atoi(sel.AttrOr("data-eid", ""))
	if err != nil {
		return booking.Slot{}, fmt.Errorf("grid input has bad eid %q", sel.AttrOr("data-eid", ""))
	}
	s.EID = eid
	return s, nil
}
