package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"syscall"
	"text/tabwriter"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/Frictionalfor/codeFORGE-sub002/core"
	"github.com/Frictionalfor/codeFORGE-sub002/core/classroom"
	"github.com/Frictionalfor/codeFORGE-sub002/core/dashboard"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type classroomService interface {
	dashboard.Loader
	ListClasses(ctx context.Context) ([]classroom.EnrolledClass, error)
	ClassAssignments(ctx context.Context, class classroom.EnrolledClass) []classroom.EnrichedAssignment
	Submission(ctx context.Context, classID, assignmentID string) (*classroom.Submission, error)
	Submit(ctx context.Context, classID, assignmentID, code string) (classroom.Submission, error)
}

type commandLine struct {
	conf    *core.Config
	logger  core.Logger
	svc     classroomService
	mailSvc core.EmailService
	in      io.Reader
	out     io.Writer
}

func promptCredential() (string, error) {
	fmt.Print("Enter access token:")
	token, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(token) == 0 {
		return "", errors.New("no access token given")
	}
	return string(token), nil
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  classes                              - list enrolled classes")
	fmt.Fprintln(cli.out, "  assignments [-view V] [-class NAME]  - list assignments (views: all, upcoming, overdue, completed)")
	fmt.Fprintln(cli.out, "  summary                              - count assignments per view")
	fmt.Fprintln(cli.out, "  digest -to EMAIL [-name NAME]        - email the upcoming & overdue digest")
	fmt.Fprintln(cli.out, "  shell                                - browse the dashboard interactively")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	assignmentsCmd := flag.NewFlagSet("assignments", flag.ContinueOnError)
	assignmentsCmd.SetOutput(cli.out)
	assignmentsView := assignmentsCmd.String("view", string(classroom.ViewAll), "One of: all, upcoming, overdue, completed.")
	assignmentsClass := assignmentsCmd.String("class", "", "Only show this class (closest name match).")

	digestCmd := flag.NewFlagSet("digest", flag.ContinueOnError)
	digestCmd.SetOutput(cli.out)
	digestTo := digestCmd.String("to", "", "The recipient's email.")
	digestName := digestCmd.String("name", "", "The recipient's name.")

	switch args[1] {
	case "classes":
		return cli.classes(ctx)
	case "assignments":
		if err := assignmentsCmd.Parse(args[2:]); err != nil {
			return err
		}
		view, err := classroom.ParseView(*assignmentsView)
		if err != nil {
			assignmentsCmd.Usage()
			return errHelp
		}
		return cli.assignments(ctx, view, *assignmentsClass)
	case "summary":
		return cli.summary(ctx)
	case "digest":
		if err := digestCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *digestTo == "" {
			digestCmd.Usage()
			return errHelp
		}
		to, err := mail.ParseAddress(*digestTo)
		if err != nil {
			return errors.Wrapf(err, "invalid email %q", *digestTo)
		}
		if *digestName != "" {
			to.Name = *digestName
		}
		return cli.digest(ctx, *to)
	case "shell":
		return cli.shell(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}

// load runs the pipeline; a failure to list classes is shown as a notice, not returned.
func (cli *commandLine) load(ctx context.Context) classroom.Result {
	res, err := cli.svc.Load(ctx)
	if err != nil {
		fmt.Fprintln(cli.out, classroom.Notice(err))
	}
	return res
}

func (cli *commandLine) classes(ctx context.Context) error {
	classes, err := cli.svc.ListClasses(ctx)
	if err != nil {
		fmt.Fprintln(cli.out, classroom.Notice(err))
		return err
	}
	printClasses(cli.out, classes)
	return nil
}

func (cli *commandLine) assignments(ctx context.Context, view classroom.View, className string) error {
	res := cli.load(ctx)
	if className != "" {
		class, err := matchClass(className, res.Classes())
		if err != nil {
			return err
		}
		res = res.ForClass(class.ID)
	}
	printAssignments(cli.out, res.View(view), false)
	return nil
}

func (cli *commandLine) summary(ctx context.Context) error {
	sum := cli.load(ctx).Summary()
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "all\t%d\n", sum.All)
	fmt.Fprintf(w, "upcoming\t%d\n", sum.Upcoming)
	fmt.Fprintf(w, "overdue\t%d\n", sum.Overdue)
	fmt.Fprintf(w, "completed\t%d\n", sum.Completed)
	return w.Flush()
}

func (cli *commandLine) digest(ctx context.Context, to mail.Address) error {
	msg, ok := dashboard.NewDigest(cli.load(ctx), to.Name, to)
	if !ok {
		fmt.Fprintln(cli.out, "Nothing upcoming or overdue, no digest sent.")
		return nil
	}
	if err := msg.Render(cli.conf.AppName, cli.conf.FrontendBaseURL); err != nil {
		return errors.Wrap(err, "rendering digest")
	}
	if !msg.HasContent() {
		return errors.Errorf("digest template %q renders nothing", msg.TemplateName)
	}
	cli.mailSvc.SendMessages(msg)
	fmt.Fprintf(cli.out, "Digest sent to %s.\n", to.String())
	return nil
}

func printClasses(out io.Writer, classes []classroom.EnrolledClass) {
	if len(classes) == 0 {
		fmt.Fprintln(out, "You are not enrolled in any class.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCLASS\tASSIGNMENTS\tSTUDENTS")
	for i, c := range classes {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", i+1, c.Name, c.AssignmentCount, c.CurrentStudents)
	}
	_ = w.Flush()
}

func printAssignments(out io.Writer, items []classroom.EnrichedAssignment, numbered bool) {
	if len(items) == 0 {
		fmt.Fprintln(out, "No assignments.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tASSIGNMENT\tCLASS\tDUE\tSTATUS")
	for i, e := range items {
		num := "-"
		if numbered {
			num = fmt.Sprint(i + 1)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", num, e.Title, e.ClassName, e.DueLabel(), e.StatusLabel())
	}
	_ = w.Flush()
}
