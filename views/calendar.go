package views

import (
	"context"
	"errors"
	"time"

	"github.com/Yuki-gilty/drone-manager/inventory"
	"github.com/Yuki-gilty/drone-manager/models"
	"golang.org/x/sync/errgroup"
)

type EventType string

const (
	EventPractice    EventType = "practice"
	EventRepair      EventType = "repair"
	EventReplacement EventType = "replacement"
)

const unknownDrone = "Unknown"

// Event is one entry shown on a calendar day. Source is the practice day,
// repair or replacement entry the event was derived from.
type Event struct {
	Type   EventType `json:"type"`
	Date   string    `json:"date"`
	Label  string    `json:"label"`
	Source any       `json:"source"`
}

type Day struct {
	// Date is empty for padding cells outside the month.
	Date    string  `json:"date"`
	InMonth bool    `json:"inMonth"`
	Events  []Event `json:"events"`
}

type Week [7]Day

type MonthView struct {
	Year      int          `json:"year"`
	Month     time.Month   `json:"month"`
	WeekStart time.Weekday `json:"weekStart"`
	Weeks     []Week       `json:"weeks"`
}

type sources struct {
	practice inventory.ListResult[models.PracticeDay]
	repairs  inventory.ListResult[models.Repair]
	parts    inventory.ListResult[models.Part]
	drones   inventory.ListResult[models.Drone]
}

func (s sources) err() error {
	return errors.Join(s.practice.Err, s.repairs.Err, s.parts.Err, s.drones.Err)
}

func (v *Views) load(ctx context.Context) sources {
	var s sources
	var g errgroup.Group
	g.Go(func() error { s.practice = v.store.PracticeDays.List(ctx); return nil })
	g.Go(func() error { s.repairs = v.store.Repairs.List(ctx, inventory.RepairFilter{}); return nil })
	g.Go(func() error { s.parts = v.store.Parts.List(ctx, inventory.PartFilter{}); return nil })
	g.Go(func() error { s.drones = v.store.Drones.List(ctx, inventory.DroneFilter{}); return nil })
	_ = g.Wait()
	return s
}

// byDate indexes every event by its date. Within a date, practice events
// come first, then repairs, then replacements.
func (s sources) byDate() map[string][]Event {
	droneNames := make(map[string]string, len(s.drones.Items))
	for _, d := range s.drones.Items {
		droneNames[d.ID] = d.Name
	}
	droneName := func(id string) string {
		if name, ok := droneNames[id]; ok {
			return name
		}
		return unknownDrone
	}
	partsByID := make(map[string]models.Part, len(s.parts.Items))
	for _, p := range s.parts.Items {
		partsByID[p.ID] = p
	}

	events := make(map[string][]Event)
	for _, day := range s.practice.Items {
		events[day.Date] = append(events[day.Date], Event{
			Type:   EventPractice,
			Date:   day.Date,
			Label:  "Practice",
			Source: day,
		})
	}
	for _, r := range s.repairs.Items {
		label := droneName(r.DroneID) + " repair"
		if r.PartID != nil {
			if p, ok := partsByID[*r.PartID]; ok && p.Name != "" {
				label = droneName(r.DroneID) + " - " + p.Name + " repair"
			}
		}
		events[r.Date] = append(events[r.Date], Event{
			Type:   EventRepair,
			Date:   r.Date,
			Label:  label,
			Source: r,
		})
	}
	for _, p := range s.parts.Items {
		for _, entry := range p.ReplacementHistory {
			events[entry.Date] = append(events[entry.Date], Event{
				Type:   EventReplacement,
				Date:   entry.Date,
				Label:  droneName(p.DroneID) + " - " + p.Name + " replacement",
				Source: entry,
			})
		}
	}
	return events
}

// EventsForDate lists the events of one YYYY-MM-DD date.
func (v *Views) EventsForDate(ctx context.Context, date string) ([]Event, error) {
	src := v.load(ctx)
	events := src.byDate()[date]
	if events == nil {
		events = make([]Event, 0)
	}
	return events, src.err()
}

// Month lays out a month as weeks of seven days starting on weekStart, with
// padding cells before the first and after the last day.
func (v *Views) Month(ctx context.Context, year int, month time.Month, weekStart time.Weekday) (*MonthView, error) {
	src := v.load(ctx)
	return layoutMonth(year, month, weekStart, src.byDate()), src.err()
}

func layoutMonth(year int, month time.Month, weekStart time.Weekday, events map[string][]Event) *MonthView {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	lead := (int(first.Weekday()) - int(weekStart) + 7) % 7

	view := &MonthView{Year: year, Month: month, WeekStart: weekStart}
	cells := make([]Day, 0, 42)
	for i := 0; i < lead; i++ {
		cells = append(cells, Day{Events: []Event{}})
	}
	for d := 1; d <= daysInMonth; d++ {
		date := first.AddDate(0, 0, d-1).Format(models.DateLayout)
		dayEvents := events[date]
		if dayEvents == nil {
			dayEvents = []Event{}
		}
		cells = append(cells, Day{Date: date, InMonth: true, Events: dayEvents})
	}
	for len(cells)%7 != 0 {
		cells = append(cells, Day{Events: []Event{}})
	}

	for i := 0; i < len(cells); i += 7 {
		var w Week
		copy(w[:], cells[i:i+7])
		view.Weeks = append(view.Weeks, w)
	}
	return view
}
