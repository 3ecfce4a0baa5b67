package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/views"
	"github.com/charmbracelet/lipgloss"
)

const calendarCellWidth = 7

// Table renders rows under a header, padding every column to its widest cell.
// Widths use lipgloss so styled cells line up.
func Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var b strings.Builder
	head := make([]string, len(headers))
	total := 0
	for i, h := range headers {
		head[i] = HeaderStyle.Render(padToWidth(h, widths[i]))
		total += widths[i] + 2
	}
	b.WriteString(strings.TrimRight(strings.Join(head, "  "), " "))
	b.WriteString("\n")
	b.WriteString(DimStyle.Render(strings.Repeat("─", max(total-2, 0))))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i < len(widths) {
				cell = padToWidth(cell, widths[i])
			}
			cells[i] = cell
		}
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
	}
	return b.String()
}

// padToWidth pads a string with spaces to reach the target width.
func padToWidth(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func Empty(what string) string {
	return DimStyle.Render("No " + what + " yet")
}

func Error(err error) string {
	return ErrorStyle.Render("Error: " + err.Error())
}

func Success(msg string) string {
	return SuccessStyle.Render(msg)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func Drones(drones []models.Drone) string {
	if len(drones) == 0 {
		return Empty("drones")
	}
	rows := make([][]string, 0, len(drones))
	for _, d := range drones {
		rows = append(rows, []string{
			DimStyle.Render(d.ID),
			d.Name,
			orDash(d.TypeName),
			StatusStyle(d.Status).Render(d.Status.Label()),
			d.StartDate,
			CountStyle.Render(fmt.Sprint(len(d.Parts))),
		})
	}
	return Table([]string{"ID", "NAME", "TYPE", "STATUS", "SINCE", "PARTS"}, rows)
}

func Parts(parts []models.Part) string {
	if len(parts) == 0 {
		return Empty("parts")
	}
	rows := make([][]string, 0, len(parts))
	for _, p := range parts {
		last := "-"
		if n := len(p.ReplacementHistory); n > 0 {
			last = p.ReplacementHistory[n-1].Date
		}
		rows = append(rows, []string{
			DimStyle.Render(p.ID),
			p.Name,
			orDash(p.ManufacturerName),
			p.StartDate,
			CountStyle.Render(fmt.Sprint(len(p.ReplacementHistory))),
			last,
		})
	}
	return Table([]string{"ID", "NAME", "MAKER", "SINCE", "REPLACED", "LAST"}, rows)
}

// Repairs lists repairs. Names resolve drone and part ids for display; an id
// missing from the map is shown as is.
func Repairs(repairs []models.Repair, droneNames, partNames map[string]string) string {
	if len(repairs) == 0 {
		return Empty("repairs")
	}
	rows := make([][]string, 0, len(repairs))
	for _, r := range repairs {
		drone := droneNames[r.DroneID]
		if drone == "" {
			drone = r.DroneID
		}
		part := DimStyle.Render("whole drone")
		if r.PartID != nil {
			part = partNames[*r.PartID]
			if part == "" {
				part = *r.PartID
			}
		}
		rows = append(rows, []string{DimStyle.Render(r.ID), r.Date, drone, part, r.Description})
	}
	return Table([]string{"ID", "DATE", "DRONE", "PART", "DESCRIPTION"}, rows)
}

func DroneTypes(types []models.DroneType, makerNames map[string]string) string {
	if len(types) == 0 {
		return Empty("drone types")
	}
	rows := make([][]string, 0, len(types))
	for _, t := range types {
		names := make([]string, 0, len(t.DefaultParts))
		for _, p := range t.DefaultParts {
			name := p.Name
			if p.ManufacturerID != nil {
				if maker := makerNames[*p.ManufacturerID]; maker != "" {
					name += " (" + maker + ")"
				}
			}
			names = append(names, name)
		}
		rows = append(rows, []string{DimStyle.Render(t.ID), t.Name, orDash(strings.Join(names, ", "))})
	}
	return Table([]string{"ID", "NAME", "DEFAULT PARTS"}, rows)
}

func Manufacturers(makers []models.Manufacturer) string {
	if len(makers) == 0 {
		return Empty("manufacturers")
	}
	rows := make([][]string, 0, len(makers))
	for _, m := range makers {
		rows = append(rows, []string{DimStyle.Render(m.ID), m.Name})
	}
	return Table([]string{"ID", "NAME"}, rows)
}

func PracticeDays(days []models.PracticeDay) string {
	if len(days) == 0 {
		return Empty("practice days")
	}
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		note := ""
		if d.Note != nil {
			note = *d.Note
		}
		rows = append(rows, []string{DimStyle.Render(d.ID), d.Date, note})
	}
	return Table([]string{"ID", "DATE", "NOTE"}, rows)
}

// DroneDetail renders the drone header, its parts and its repairs in a box.
func DroneDetail(d *views.DroneDetail) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(d.Drone.Name))
	b.WriteString("  ")
	b.WriteString(StatusStyle(d.Drone.Status).Render(d.Drone.Status.Label()))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("Type:"), orDash(d.TypeName))
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("Since:"), d.Drone.StartDate)
	if d.Drone.Photo != "" {
		photo := d.Drone.Photo
		if strings.HasPrefix(photo, "data:") {
			photo = "embedded image"
		}
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("Photo:"), DimStyle.Render(photo))
	}

	b.WriteString("\n")
	b.WriteString(LabelStyle.Render("Parts"))
	b.WriteString("\n")
	b.WriteString(Parts(d.Parts))
	b.WriteString("\n\n")
	b.WriteString(LabelStyle.Render("Repairs"))
	b.WriteString("\n")
	if len(d.Repairs) == 0 {
		b.WriteString(Empty("repairs"))
	} else {
		rows := make([][]string, 0, len(d.Repairs))
		for _, r := range d.Repairs {
			part := r.PartName
			if part == "" {
				part = DimStyle.Render("whole drone")
			}
			rows = append(rows, []string{r.Date, part, r.Description})
		}
		b.WriteString(Table([]string{"DATE", "PART", "DESCRIPTION"}, rows))
	}
	return BoxStyle.Render(b.String())
}

var eventMarks = map[views.EventType]string{
	views.EventPractice:    "P",
	views.EventRepair:      "R",
	views.EventReplacement: "X",
}

func eventStyle(t views.EventType) lipgloss.Style {
	switch t {
	case views.EventRepair:
		return RepairStyle
	case views.EventReplacement:
		return ReplacementStyle
	default:
		return PracticeStyle
	}
}

// Calendar renders a month grid. Each day shows one mark per event type
// present that day; today is highlighted.
func Calendar(m *views.MonthView, today string) string {
	var b strings.Builder
	title := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	b.WriteString(HeaderStyle.Render(title))
	b.WriteString("\n")

	heads := make([]string, 7)
	for i := range heads {
		wd := time.Weekday((int(m.WeekStart) + i) % 7)
		heads[i] = padToWidth(DimStyle.Render(wd.String()[:3]), calendarCellWidth)
	}
	b.WriteString(strings.TrimRight(strings.Join(heads, ""), " "))

	for _, week := range m.Weeks {
		cells := make([]string, 7)
		for i, day := range week {
			cells[i] = padToWidth(dayCell(day, today), calendarCellWidth)
		}
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(strings.Join(cells, ""), " "))
	}
	b.WriteString("\n")
	b.WriteString(DimStyle.Render(fmt.Sprintf("%s practice  %s repair  %s replacement",
		PracticeStyle.Render("P"), RepairStyle.Render("R"), ReplacementStyle.Render("X"))))
	return b.String()
}

func dayCell(day views.Day, today string) string {
	if day.Date == "" || !day.InMonth {
		return ""
	}
	num := fmt.Sprintf("%2s", strings.TrimPrefix(day.Date[len(day.Date)-2:], "0"))
	if day.Date == today {
		num = TodayStyle.Render(num)
	}
	seen := make(map[views.EventType]bool)
	marks := ""
	for _, e := range day.Events {
		if seen[e.Type] {
			continue
		}
		seen[e.Type] = true
		marks += eventStyle(e.Type).Render(eventMarks[e.Type])
	}
	return num + marks
}

// DayEvents lists the events of one date.
func DayEvents(date string, events []views.Event) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(date))
	if len(events) == 0 {
		b.WriteString("\n")
		b.WriteString(DimStyle.Render("Nothing recorded"))
		return b.String()
	}
	for _, e := range events {
		b.WriteString("\n")
		b.WriteString(eventStyle(e.Type).Render(padToWidth(string(e.Type), 12)))
		b.WriteString(e.Label)
	}
	return b.String()
}
