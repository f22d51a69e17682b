package main

import (
	"context"
	"fmt"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/application"
	"github.com/trezcool/masomo/core/newsletter"
	"github.com/trezcool/masomo/core/session"
)

func (cli *commandLine) listSessions(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("sessions list")
	var filter session.QueryFilter
	fs.StringVar(&filter.Status, "status", "", "scheduled|live|completed|cancelled")
	fs.StringVar(&filter.MentorID, "mentor", "", "Sessions of this mentor.")
	fs.StringVar(&filter.ParticipantID, "participant", "", "Sessions of this participant.")
	from := fs.String("from", "", "Starting from (YYYY-MM-DD).")
	ordering := fs.String("ordering", "", "eg: -startsAt")
	fs.StringVar(&filter.Cursor, "cursor", "", "Cursor of the next page.")
	fs.IntVar(&filter.Limit, "limit", 0, "Page size.")
	if err := parse(fs, args); err != nil {
		return err
	}
	filter.Ordering = core.ParseOrderings(*ordering)
	if *from != "" {
		var err error
		if filter.From, err = parseDate(*from); err != nil {
			return err
		}
	}

	list, err := cli.client.ListSessions(ctx, filter)
	if err != nil {
		return err
	}
	w := cli.table("ID", "TITLE", "STARTS", "STATUS", "SEATS")
	for _, s := range list.Items {
		row(w, s.ID, s.Title, s.StartsAt.Format("2006-01-02 15:04"), s.Status,
			fmt.Sprintf("%d/%d", len(s.ParticipantIDs), s.Capacity))
	}
	if err = w.Flush(); err != nil {
		return err
	}
	listFooter(cli.out, list)
	return nil
}

func (cli *commandLine) joinSession(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("sessions join")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := arg(fs, "session ID")
	if err != nil {
		return err
	}
	s, err := cli.client.JoinSession(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Joined %s (%d/%d)\n", s.Title, len(s.ParticipantIDs), s.Capacity)
	return nil
}

// Applications

func (cli *commandLine) listApplications(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("applications list")
	var filter application.QueryFilter
	fs.StringVar(&filter.Status, "status", "", "pending|reviewing|accepted|rejected|withdrawn")
	fs.StringVar(&filter.Type, "type", "", "mentor|mentee")
	fs.StringVar(&filter.Search, "search", "", "Match name or email.")
	fs.IntVar(&filter.Page.Page, "page", 1, "Page number.")
	fs.IntVar(&filter.Limit, "limit", 0, "Page size.")
	if err := parse(fs, args); err != nil {
		return err
	}

	list, err := cli.client.ListApplications(ctx, filter)
	if err != nil {
		return err
	}
	w := cli.table("ID", "TYPE", "NAME", "EMAIL", "STATUS")
	for _, a := range list.Items {
		row(w, a.ID, a.Type, a.Name, a.Email, a.Status)
	}
	if err = w.Flush(); err != nil {
		return err
	}
	listFooter(cli.out, list)
	return nil
}

func (cli *commandLine) setApplicationStatus(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("applications status")
	var su application.StatusUpdate
	id := fs.String("id", "", "Application ID.")
	fs.StringVar(&su.Status, "status", "", "reviewing|accepted|rejected|withdrawn")
	fs.StringVar(&su.ReviewNote, "note", "", "Review note.")
	if err := parse(fs, args, "id", "status"); err != nil {
		return err
	}

	a, err := cli.client.UpdateApplicationStatus(ctx, *id, su)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Application of %s is now %s\n", a.Name, a.Status)
	return nil
}

// Newsletter

func (cli *commandLine) subscribe(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("newsletter subscribe")
	var s newsletter.Subscribe
	fs.StringVar(&s.Email, "email", "", "Email.")
	fs.StringVar(&s.Name, "name", "", "Name.")
	s.Source = "cli"
	if err := parse(fs, args, "email"); err != nil {
		return err
	}

	sub, err := cli.client.Subscribe(ctx, s)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s is subscribed\n", sub.Email)
	return nil
}

func (cli *commandLine) unsubscribe(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("newsletter unsubscribe")
	email := fs.String("email", "", "Email.")
	if err := parse(fs, args, "email"); err != nil {
		return err
	}

	sub, err := cli.client.Unsubscribe(ctx, *email)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s is unsubscribed\n", sub.Email)
	return nil
}
