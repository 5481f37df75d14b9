package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Frictionalfor/codeFORGE-sub002/core/classroom"
	"github.com/Frictionalfor/codeFORGE-sub002/core/dashboard"
)

var readFileFunc = os.ReadFile // mockable

// shellSession is the terminal rendition of the dashboard views.
type shellSession struct {
	cli   *commandLine
	shell *dashboard.Shell

	// what the last listing showed, for `open N` / `edit N`
	classes []classroom.EnrolledClass
	items   []classroom.EnrichedAssignment
}

func (cli *commandLine) shell(ctx context.Context) error {
	s := &shellSession{cli: cli, shell: dashboard.NewShell(cli.svc, cli.logger)}
	s.home(ctx)

	scanner := bufio.NewScanner(cli.in)
	for {
		fmt.Fprintf(cli.out, "%s> ", s.shell.Current().Name())
		if !scanner.Scan() {
			fmt.Fprintln(cli.out)
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if quit := s.exec(ctx, fields[0], fields[1:]); quit {
			return nil
		}
	}
}

func (s *shellSession) printHelp() {
	out := s.cli.out
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  home        - dashboard overview (reloads)")
	fmt.Fprintln(out, "  classes     - enrolled classes")
	fmt.Fprintln(out, "  open N      - assignments of class N")
	fmt.Fprintln(out, "  edit N      - open assignment N in the editor")
	fmt.Fprintln(out, "  submit FILE - submit FILE for the assignment being edited")
	fmt.Fprintln(out, "  back        - go one level up")
	fmt.Fprintln(out, "  schedule    - assignments by due day")
	fmt.Fprintln(out, "  settings    - connection settings")
	fmt.Fprintln(out, "  quit        - leave the shell")
}

func (s *shellSession) exec(ctx context.Context, cmd string, args []string) (quit bool) {
	var err error
	switch cmd {
	case "home":
		s.home(ctx)
	case "classes":
		err = s.showClasses(ctx)
	case "open":
		err = s.openClass(ctx, args)
	case "edit":
		err = s.openEditor(ctx, args)
	case "submit":
		err = s.submit(ctx, args)
	case "back":
		s.shell.Back(ctx)
		err = s.render(ctx)
	case "schedule":
		s.shell.ShowSchedule(ctx)
		s.printSchedule()
	case "settings":
		s.shell.ShowSettings(ctx)
		s.printSettings()
	case "quit", "exit":
		return true
	case "help":
		s.printHelp()
	default:
		fmt.Fprintf(s.cli.out, "unknown command %q, try `help`\n", cmd)
	}
	if err != nil {
		fmt.Fprintf(s.cli.out, "error: %s\n", err)
	}
	return false
}

// render redraws the current view after Back.
func (s *shellSession) render(ctx context.Context) error {
	switch v := s.shell.Current().(type) {
	case dashboard.Home:
		s.shell.Wait()
		s.printHome()
	case dashboard.Classes:
		return s.listClasses(ctx)
	case dashboard.Assignments:
		s.listAssignments(ctx, v.Class)
	}
	return nil
}

func (s *shellSession) home(ctx context.Context) {
	s.shell.Home(ctx)
	s.shell.Wait()
	s.printHome()
}

func (s *shellSession) printHome() {
	out := s.cli.out
	st := s.shell.State()
	if st.Notice != "" {
		fmt.Fprintln(out, st.Notice)
	}
	stats := st.Stats
	fmt.Fprintf(out, "Classes: %d  Assignments: %d  Completed: %d  Upcoming: %d  Overdue: %d  (%.0f%% done)\n",
		stats.EnrolledClasses, stats.Total, stats.Completed, stats.Upcoming, stats.Overdue, stats.CompletionRate)
	if stats.NextDue != nil {
		fmt.Fprintf(out, "Next due: %s (%s) - %s\n", stats.NextDue.Title, stats.NextDue.ClassName, stats.NextDue.DueLabel())
	}
	if len(stats.RecentActivity) > 0 {
		fmt.Fprintln(out, "Recent activity:")
		for _, e := range stats.RecentActivity {
			when := "-"
			if e.SubmittedAt != nil {
				when = e.SubmittedAt.Local().Format("Jan 2 15:04")
			}
			fmt.Fprintf(out, "  %s  %s (%s)\n", when, e.Title, e.ClassName)
		}
	}
}

func (s *shellSession) showClasses(ctx context.Context) error {
	s.shell.ShowClasses(ctx)
	return s.listClasses(ctx)
}

func (s *shellSession) listClasses(ctx context.Context) error {
	classes, err := s.cli.svc.ListClasses(ctx)
	if err != nil {
		fmt.Fprintln(s.cli.out, classroom.Notice(err))
		return nil
	}
	s.classes = classes
	printClasses(s.cli.out, classes)
	return nil
}

func (s *shellSession) listAssignments(ctx context.Context, class classroom.EnrolledClass) {
	s.items = s.cli.svc.ClassAssignments(ctx, class)
	fmt.Fprintf(s.cli.out, "%s\n", class.Name)
	printAssignments(s.cli.out, s.items, true)
}

// pick parses the 1-based index in args against n entries.
func pick(args []string, n int, what string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: %s N", what)
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("no %s #%s", what, args[0])
	}
	return i - 1, nil
}

func (s *shellSession) openClass(ctx context.Context, args []string) error {
	if _, ok := s.shell.Current().(dashboard.Classes); !ok {
		return fmt.Errorf("open a class from the `classes` view")
	}
	i, err := pick(args, len(s.classes), "class")
	if err != nil {
		return err
	}
	class := s.classes[i]
	if err = s.shell.OpenClass(ctx, class); err != nil {
		return err
	}
	s.listAssignments(ctx, class)
	return nil
}

func (s *shellSession) openEditor(ctx context.Context, args []string) error {
	v, ok := s.shell.Current().(dashboard.Assignments)
	if !ok {
		return fmt.Errorf("edit an assignment from a class view")
	}
	i, err := pick(args, len(s.items), "assignment")
	if err != nil {
		return err
	}
	a := s.items[i]
	if err = s.shell.OpenEditor(ctx, v.Class, a); err != nil {
		return err
	}

	out := s.cli.out
	fmt.Fprintf(out, "%s (%s) - %s\n", a.Title, a.Language, a.DueLabel())
	if a.TotalPoints != nil {
		fmt.Fprintf(out, "Points: %d\n", *a.TotalPoints)
	}
	if a.TimeLimitMs != nil {
		fmt.Fprintf(out, "Time limit: %s\n", time.Duration(*a.TimeLimitMs)*time.Millisecond)
	}
	if !a.AcceptsSubmission() {
		fmt.Fprintln(out, "Late submissions are not accepted.")
	} else if p := a.LatePenalty(); p > 0 {
		fmt.Fprintf(out, "Late penalty: %.0f%%\n", p)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, a.ProblemDescription)

	sub, err := s.cli.svc.Submission(ctx, v.Class.ID, a.ID)
	if err != nil {
		return err
	}
	if sub != nil {
		fmt.Fprintf(out, "\nLast submission (%s):\n%s\n", sub.Status, sub.Code)
	}
	return nil
}

func (s *shellSession) submit(ctx context.Context, args []string) error {
	e, ok := s.shell.Current().(dashboard.Editor)
	if !ok {
		return fmt.Errorf("submit from the editor")
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: submit FILE")
	}
	code, err := readFileFunc(args[0])
	if err != nil {
		return err
	}
	sub, err := s.cli.svc.Submit(ctx, e.Class().ID, e.Assignment().ID, string(code))
	if err != nil {
		return err
	}
	fmt.Fprintf(s.cli.out, "Submitted (%s).\n", sub.Status)
	return nil
}

func (s *shellSession) printSchedule() {
	days := dashboard.NewSchedule(s.shell.State().Result, time.Local)
	if len(days) == 0 {
		fmt.Fprintln(s.cli.out, "Nothing scheduled.")
		return
	}
	for _, d := range days {
		fmt.Fprintf(s.cli.out, "%s %s\n", d.Weekday, d.Date)
		for _, e := range d.Assignments {
			fmt.Fprintf(s.cli.out, "  %s (%s) - %s\n", e.Title, e.ClassName, e.StatusLabel())
		}
	}
}

func (s *shellSession) printSettings() {
	conf := s.cli.conf
	fmt.Fprintf(s.cli.out, "Platform: %s\n", conf.Platform.BaseURL)
	fmt.Fprintf(s.cli.out, "Timeout: %s\n", conf.Platform.Timeout)
	fmt.Fprintf(s.cli.out, "Max concurrent requests: %d\n", conf.Platform.MaxConcurrentRequests)
}
