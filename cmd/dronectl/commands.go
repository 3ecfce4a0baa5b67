package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Yuki-gilty/drone-manager/cmd/dronectl/ui"
	"github.com/Yuki-gilty/drone-manager/inventory"
	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/pkg/photo"
	"github.com/Yuki-gilty/drone-manager/remote"
)

type cli struct {
	b         *backend
	out       io.Writer
	in        io.Reader
	weekStart time.Weekday
	now       func() time.Time
}

type command struct {
	name    string
	args    string
	summary string
	run     func(ctx context.Context, c *cli, args []string) error
}

func commandTable() []command {
	return []command{
		{"register", "--username U [--email E] [--password P]", "create an account", cmdRegister},
		{"login", "USERNAME [--password P]", "sign in", cmdLogin},
		{"logout", "", "sign out", cmdLogout},
		{"whoami", "", "show the signed-in user", cmdWhoAmI},
		{"drones", "[--type TYPE_ID]", "list drones", cmdDrones},
		{"drone", "ID", "show a drone with its parts and repairs", cmdDrone},
		{"drone-add", "--name N --type TYPE_ID [--since DATE] [--status S] [--photo FILE]", "add a drone with its type's default parts", cmdDroneAdd},
		{"drone-status", "ID ready|unstable|faulty", "change a drone's status", cmdDroneStatus},
		{"drone-rm", "ID", "delete a drone, its parts and repairs", cmdDroneRemove},
		{"parts", "DRONE_ID", "list a drone's parts", cmdParts},
		{"part-add", "--drone ID --name N [--since DATE] [--maker ID]", "add a part", cmdPartAdd},
		{"replace", "PART_ID --desc D [--date DATE] [--note N]", "record a part replacement", cmdReplace},
		{"repairs", "[--drone ID] [--part ID]", "list repairs", cmdRepairs},
		{"repair-add", "--drone ID --desc D [--part ID] [--date DATE]", "record a repair", cmdRepairAdd},
		{"types", "", "list drone types", cmdTypes},
		{"type-add", "NAME [--parts \"Frame,Motor\"]", "add a drone type", cmdTypeAdd},
		{"type-rm", "ID", "delete an unused drone type", cmdTypeRemove},
		{"makers", "", "list manufacturers", cmdMakers},
		{"maker-add", "NAME", "add a manufacturer", cmdMakerAdd},
		{"maker-rm", "ID", "delete an unused manufacturer", cmdMakerRemove},
		{"practice", "", "list practice days", cmdPractice},
		{"practice-add", "[DATE] [--note N]", "record a practice day", cmdPracticeAdd},
		{"calendar", "[YYYY-MM]", "show a month of practice, repairs and replacements", cmdCalendar},
		{"day", "YYYY-MM-DD", "show what happened on a date", cmdDay},
		{"import", "FILE.json", "import a local data export", cmdImport},
	}
}

func findCommand(name string) (command, bool) {
	for _, cmd := range commandTable() {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("no command given, see dronectl -h")
	}
	cmd, ok := findCommand(args[0])
	if !ok {
		return fmt.Errorf("unknown command %q, see dronectl -h", args[0])
	}
	return cmd.run(ctx, c, args[1:])
}

func (c *cli) print(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *cli) today() string {
	return c.now().Format(models.DateLayout)
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseArgs lets flags and positional arguments appear in any order.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%s: %w", fs.Name(), err)
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func exactArgs(name string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

// readPassword prompts on out and reads one line from in.
func (c *cli) readPassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv("DRONECTL_PASSWORD"); v != "" {
		return v, nil
	}
	fmt.Fprint(c.out, "Password: ")
	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func cmdRegister(ctx context.Context, c *cli, args []string) error {
	fs := newFlags("register")
	username := fs.String("username", "", "")
	email := fs.String("email", "", "")
	password := fs.String("password", "", "")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	pw, err := c.readPassword(*password)
	if err != nil {
		return err
	}
	name, err := c.b.account.Register(ctx, models.RegisterRequest{Username: *username, Email: *email, Password: pw})
	if err != nil {
		return err
	}
	c.print(ui.Success("Registered and signed in as " + name))
	return nil
}

func cmdLogin(ctx context.Context, c *cli, args []string) error {
	fs := newFlags("login")
	password := fs.String("password", "", "")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := exactArgs("login", rest, 1); err != nil {
		return err
	}
	pw, err := c.readPassword(*password)
	if err != nil {
		return err
	}
	name, err := c.b.account.Login(ctx, rest[0], pw)
	if err != nil {
		return err
	}
	c.print(ui.Success("Signed in as " + name))
	return nil
}

func cmdLogout(ctx context.Context, c *cli, _ []string) error {
	if err := c.b.account.Logout(ctx); err != nil {
		return err
	}
	c.print(ui.Success("Signed out"))
	return nil
}

func cmdWhoAmI(ctx context.Context, c *cli, _ []string) error {
	name, err := c.b.account.WhoAmI(ctx)
	if err != nil {
		return err
	}
	c.print(name)
	return nil
}

func cmdDrones(ctx context.Context, c *cli, args []string) error {
	fs := newFlags("drones")
	typeID := fs.String("type", "", "")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	res := c.b.store.Drones.List(ctx, inventory.DroneFilter{TypeID: *typeID})
	if res.Err != nil {
		return res.Err
	}
	c.print(ui.Drones(res.Items))
	return nil
}

func cmdDrone(ctx context.Context, c *cli, args []string) error {
	if err := exactArgs("drone", args, 1); err != nil {
		return err
	}
	detail, err := c.b.views.DroneDetail(ctx, args[0])
	if detail == nil {
		if err == nil {
			err = remote.NewError(remote.ErrNotFound, "drone not found")
		}
		return err
	}
	c.print(ui.DroneDetail(detail))
	if err != nil {
		c.print(ui.Error(err))
	}
	return nil
}

func cmdDroneAdd(ctx context.Context, c *cli, args []string) error {
	fs := newFlags("drone-add")
	name := fs.String("name", "", "")
	typeID := fs.String("type", "", "")
	since := fs.String("since", c.today(), "")
	status := fs.String("status", string(models.DroneReady), "")
	photoPath := fs.String("photo", "", "")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	in := models.DroneInput{Name: *name, Type: *typeID, StartDate: *since, Status: models.DroneStatus(*status)}
	if *photoPath != "" {
		uri, err := loadPhoto(*photoPath)
		if err != nil {
			return err
		}
		in.Photo = uri
	}
	created, err := c.b.store.Drones.Add(ctx, in)
	if err != nil {
		return err
	}
	c.print(ui.Success(created.Message) + " " + ui.DimStyle.Render(created.ID))
	return nil
}

func loadPhoto(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()
	uri, err := photo.Compress(f)
	if err != nil {
		return "", fmt.Errorf("compress photo: %w", err)
	}
	return uri, nil
}

func cmdDroneStatus(ctx context.Context, c *cli, args []string) error {
	if err := exactArgs("drone-status", args, 2); err != nil {
		return err
	}
	status := models.DroneStatus(strings.ToLower(args[1]))
	if !status.Valid() {
		return remote.NewError(remote.ErrValidation, "status must be ready, unstable or faulty")
	}
	if err := c.b.store.Drones.SetStatus(ctx, args[0], status); err != nil {
		return err
	}
	c.print(ui.Success("Status set to " + status.Label()))
	return nil
}

func cmdDroneRemove(ctx context.Context, c *cli, args []string) error {
	if err := exactArgs("drone-rm", args, 1); err != nil {
		return err
	}
	if err := c.b.store.Drones.Remove(ctx, args[0]); err != nil {
		return err
	}
	c.print(ui.Success("Drone deleted"))
	return nil
}

func cmdParts(ctx context.Context, c *cli, args []string) error {
	if err := exactArgs("parts", args, 1); err != nil {
		return err
	}
	res := c.b.store.Parts.List(ctx, inventory.PartFilter{DroneID: args[0]})
	if res.Err != nil {
		return res.Err
	}
	c.print(ui.Parts(res.Items))
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func cmdPartAdd(ctx context.Context, c *cli, args []string) error {
	fs := newFlags("part-add")
	droneID := fs.String("drone", "", "")
	name := fs.String("name", "", "")
	since := fs.String("since", c.today(), "")
	maker := fs.String("maker", "", "")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	created, err := c.b.store.Parts.Add(ctx, models.PartInput{
		DroneID:        *droneID,
		Name:           *name,
		StartDate:      *since,
		ManufacturerID: optional(*maker),
	})
	if err != nil {
		return err
	}
	c.print(ui.Success(created.Message) + " " + ui.DimStyle.Render(created.ID))
	return nil
}

func cmdReplace(ctx context.Context, c *cli, args []string) error {
	fs := newFlags("replace")
	date := fs.String("date", c.today(), "")
	desc := fs.String("desc", "", "")
	note := fs.String("note", "", "")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := exactArgs("replace", rest, 1); err != nil {
		return err
	}
	if _, err := c.b.store.Parts.AddReplacement(ctx, rest[0], models.ReplacementInput{Date: *date, Description: *desc, Note: *note}); err != nil {
		return err
	}
	c.print(ui.Success("Replacement recorded"))
	return nil
}

func cmdRepairs(ctx context.Context, c *cli, args []string) error {
	fs := newFlags("repairs")
	droneID := fs.String("drone", "", "")
	partID := fs.String("part", "", "")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	res := c.b.store.Repairs.List(ctx, inventory.RepairFilter{DroneID: *droneID, PartID: *partID})
	if res.Err != nil {
		return res.Err
	}

	// names are cosmetic, a failed lookup falls back to ids
	droneNames := make(map[string]string)
	for _, d := range c.b.store.Drones.List(ctx, inventory.DroneFilter{}).Items {
		droneNames[d.ID] = d.Name
	}
	partNames := make(map[string]string)
	for _, p := range c.b.store.Parts.List(ctx, inventory.PartFilter{DroneID: *droneID}).Items {
		partNames[p.ID] = p.Name
	}
	c.print(ui.Repairs(res.Items, droneNames, partNames))
	return nil
}

func cmdRepairAdd(ctx context.Context, c *cli, args []string) error {
	fs := newFlags("repair-add")
	droneID := fs.String("drone", "", "")
	partID := fs.String("part", "", "")
	date := fs.String("date", c.today(), "")
	desc := fs.String("desc", "", "")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	created, err := c.b.store.Repairs.Add(ctx, models.RepairInput{
		DroneID:     *droneID,
		PartID:      optional(*partID),
		Date:        *date,
		Description: *desc,
	})
	if err != nil {
		return err
	}
	c.print(ui.Success(created.Message) + " " + ui.DimStyle.Render(created.ID))
	return nil
}

func (c *cli) makerNames(ctx context.Context) map[string]string {
	names := make(map[string]string)
	for _, m := range c.b.store.Manufacturers.List(ctx).Items {
		names[m.ID] = m.Name
	}
	return names
}

func cmdTypes(ctx context.Context, c *cli, _ []string) error {
	res := c.b.store.DroneTypes.List(ctx)
	if res.Err != nil {
		return res.Err
	}
	c.print(ui.DroneTypes(res.Items, c.makerNames(ctx)))
	return nil
}

func cmdTypeAdd(ctx context.Context, c *cli, args []string) error {
	fs := newFlags("type-add")
	parts := fs.String("parts", "", "")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := exactArgs("type-add", rest, 1); err != nil {
		return err
	}
	in := models.DroneTypeInput{Name: rest[0]}
	for _, name := range strings.Split(*parts, ",") {
		if name = strings.TrimSpace(name); name != "" {
			in.DefaultParts = append(in.DefaultParts, models.DefaultPart{Name: name})
		}
	}
	created, err := c.b.store.DroneTypes.Add(ctx, in)
	if err != nil {
		return err
	}
	c.print(ui.Success(created.Message) + " " + ui.DimStyle.Render(created.ID))
	return nil
}

func cmdTypeRemove(ctx context.Context, c *cli, args []string) error {
	if err := exactArgs("type-rm", args, 1); err != nil {
		return err
	}
	if err := c.b.store.DroneTypes.Remove(ctx, args[0]); err != nil {
		return err
	}
	c.print(ui.Success("Drone type deleted"))
	return nil
}

func cmdMakers(ctx context.Context, c *cli, _ []string) error {
	res := c.b.store.Manufacturers.List(ctx)
	if res.Err != nil {
		return res.Err
	}
	c.print(ui.Manufacturers(res.Items))
	return nil
}

func cmdMakerAdd(ctx context.Context, c *cli, args []string) error {
	if err := exactArgs("maker-add", args, 1); err != nil {
		return err
	}
	created, err := c.b.store.Manufacturers.Add(ctx, models.ManufacturerInput{Name: args[0]})
	if err != nil {
		return err
	}
	c.print(ui.Success(created.Message) + " " + ui.DimStyle.Render(created.ID))
	return nil
}

func cmdMakerRemove(ctx context.Context, c *cli, args []string) error {
	if err := exactArgs("maker-rm", args, 1); err != nil {
		return err
	}
	if err := c.b.store.Manufacturers.Remove(ctx, args[0]); err != nil {
		return err
	}
	c.print(ui.Success("Manufacturer deleted"))
	return nil
}

func cmdPractice(ctx context.Context, c *cli, _ []string) error {
	res := c.b.store.PracticeDays.List(ctx)
	if res.Err != nil {
		return res.Err
	}
	c.print(ui.PracticeDays(res.Items))
	return nil
}

func cmdPracticeAdd(ctx context.Context, c *cli, args []string) error {
	fs := newFlags("practice-add")
	note := fs.String("note", "", "")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	date := c.today()
	switch len(rest) {
	case 0:
	case 1:
		date = rest[0]
	default:
		return exactArgs("practice-add", rest, 1)
	}
	created, err := c.b.store.PracticeDays.Add(ctx, models.PracticeDayInput{Date: date, Note: optional(*note)})
	if err != nil {
		return err
	}
	c.print(ui.Success(created.Message) + " " + ui.DimStyle.Render(date))
	return nil
}

func cmdCalendar(ctx context.Context, c *cli, args []string) error {
	month := c.now()
	switch len(args) {
	case 0:
	case 1:
		t, err := time.Parse("2006-01", args[0])
		if err != nil {
			return remote.NewError(remote.ErrValidation, "month must be YYYY-MM")
		}
		month = t
	default:
		return exactArgs("calendar", args, 1)
	}
	view, err := c.b.views.Month(ctx, month.Year(), month.Month(), c.weekStart)
	if view == nil {
		return err
	}
	c.print(ui.Calendar(view, c.today()))
	if err != nil {
		c.print(ui.Error(err))
	}
	return nil
}

func cmdDay(ctx context.Context, c *cli, args []string) error {
	if err := exactArgs("day", args, 1); err != nil {
		return err
	}
	if _, err := time.Parse(models.DateLayout, args[0]); err != nil {
		return remote.NewError(remote.ErrValidation, "date must be YYYY-MM-DD")
	}
	events, err := c.b.views.EventsForDate(ctx, args[0])
	if err != nil && len(events) == 0 {
		return err
	}
	c.print(ui.DayEvents(args[0], events))
	if err != nil {
		c.print(ui.Error(err))
	}
	return nil
}

func cmdImport(ctx context.Context, c *cli, args []string) error {
	if err := exactArgs("import", args, 1); err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse export: %w", err)
	}
	res, err := c.b.account.Import(ctx, snap)
	if err != nil {
		return err
	}
	c.print(ui.Success("Import complete"))
	c.print(ui.Table([]string{"KIND", "IMPORTED"}, [][]string{
		{"drone types", fmt.Sprint(res.DroneTypes)},
		{"manufacturers", fmt.Sprint(res.Manufacturers)},
		{"drones", fmt.Sprint(res.Drones)},
		{"parts", fmt.Sprint(res.Parts)},
		{"repairs", fmt.Sprint(res.Repairs)},
		{"practice days", fmt.Sprint(res.PracticeDays)},
	}))
	return nil
}
