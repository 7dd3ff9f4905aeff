package export

import (
	"bytes"
	"time"

	"github.com/emersion/go-ical"

	"github.com/kestrelvault/mirror/internal/store"
)

// EncodeEventsICalendar builds one VCALENDAR containing one VEVENT per row
// (spec.md §4.H): UID prefers the external identifier, falling back to the
// public ID; DTSTART/DTEND carry VALUE=DATE for all-day events and UTC
// DATE-TIME otherwise; the organizer appears once, never duplicated into
// the attendee list.
func EncodeEventsICalendar(events []store.Event, attendeesByEvent map[string][]store.Attendee) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//kestrelvault//mirror//EN")

	for _, e := range events {
		cal.Children = append(cal.Children, encodeEvent(e, attendeesByEvent[e.ID]))
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeEvent(e store.Event, attendees []store.Attendee) *ical.Component {
	comp := ical.NewComponent(ical.CompEvent)

	uid := e.ExternalID
	if uid == "" {
		uid = e.ID
	}
	comp.Props.SetText(ical.PropUID, uid)
	comp.Props.SetText(ical.PropSummary, e.Summary)
	if e.Description != "" {
		comp.Props.SetText(ical.PropDescription, e.Description)
	}
	if e.Location != "" {
		comp.Props.SetText(ical.PropLocation, e.Location)
	}
	stamp := e.SyncedAt
	if stamp.IsZero() {
		stamp = e.UpdatedUTC
	}
	comp.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())

	setEventTime(comp, ical.PropDateTimeStart, e.StartUTC, e.IsAllDay)
	setEventTime(comp, ical.PropDateTimeEnd, e.EndUTC, e.IsAllDay)

	organizerSet := false
	for _, a := range attendees {
		if a.IsOrganizer && !organizerSet {
			comp.Props.SetText(ical.PropOrganizer, "mailto:"+a.Email)
			organizerSet = true
			continue
		}
		prop := ical.Prop{Name: ical.PropAttendee, Params: make(ical.Params), Value: "mailto:" + a.Email}
		if a.Name != "" {
			prop.Params.Set("CN", a.Name)
		}
		comp.Props.Add(prop)
	}

	return comp
}

func setEventTime(comp *ical.Component, name string, t time.Time, allDay bool) {
	if allDay {
		prop := ical.Prop{Name: name, Params: make(ical.Params), Value: t.UTC().Format("20060102")}
		prop.Params.Set("VALUE", "DATE")
		comp.Props.Add(prop)
		return
	}
	comp.Props.SetDateTime(name, t.UTC())
}
