package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/project"
)

func (cli *commandLine) listProjects(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("projects list")
	var filter project.QueryFilter
	fs.StringVar(&filter.Search, "search", "", "Match name or description.")
	fs.StringVar(&filter.Category, "category", "", "Category.")
	fs.StringVar(&filter.Level, "level", "", "beginner|intermediate|advanced")
	fs.StringVar(&filter.Visibility, "visibility", "", "public|private")
	fs.StringVar(&filter.MemberID, "member", "", "Projects of this member.")
	fs.StringVar(&filter.MentorID, "mentor", "", "Projects of this mentor.")
	ordering := fs.String("ordering", "", "eg: -startDate,name")
	fs.IntVar(&filter.Page.Page, "page", 1, "Page number.")
	fs.IntVar(&filter.Limit, "limit", 0, "Page size.")
	if err := parse(fs, args); err != nil {
		return err
	}
	filter.Ordering = core.ParseOrderings(*ordering)

	list, err := cli.client.ListProjects(ctx, filter)
	if err != nil {
		return err
	}
	w := cli.table("ID", "NAME", "CATEGORY", "LEVEL", "VISIBILITY", "PROGRESS")
	for _, p := range list.Items {
		row(w, p.ID, p.Name, p.Category, p.Level, p.Visibility, fmt.Sprintf("%.0f%%", p.Progress))
	}
	if err = w.Flush(); err != nil {
		return err
	}
	listFooter(cli.out, list)
	return nil
}

func (cli *commandLine) showProject(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("projects show")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := arg(fs, "project ID")
	if err != nil {
		return err
	}

	p, err := cli.client.GetProject(ctx, id)
	if err != nil {
		return err
	}
	areas, err := cli.client.ListAreas(ctx, p.ID)
	if err != nil {
		return err
	}

	end := "-"
	if p.EndDate.Valid {
		end = p.EndDate.Time.Format("2006-01-02")
	}
	fmt.Fprintf(cli.out, "%s (%s)\n", p.Name, p.ID)
	if p.Description != "" {
		fmt.Fprintln(cli.out, p.Description)
	}
	fmt.Fprintf(cli.out, "category: %s, level: %s, visibility: %s\n", p.Category, p.Level, p.Visibility)
	fmt.Fprintf(cli.out, "dates: %s -> %s, progress: %.0f%%\n", p.StartDate.Format("2006-01-02"), end, p.Progress)
	fmt.Fprintf(cli.out, "owner: %s, mentors: %s, members: %s\n",
		p.OwnerID, orDash(strings.Join(p.MentorIDs, ",")), orDash(strings.Join(p.MemberIDs, ",")))
	if len(areas) > 0 {
		w := cli.table("AREA", "NAME")
		for _, a := range areas {
			row(w, a.ID, a.Name)
		}
		return w.Flush()
	}
	return nil
}

func (cli *commandLine) createProject(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("projects create")
	var np project.NewProject
	fs.StringVar(&np.Name, "name", "", "Name.")
	fs.StringVar(&np.Description, "description", "", "Description.")
	fs.StringVar(&np.Category, "category", "", "Category.")
	fs.StringVar(&np.Level, "level", project.LevelBeginner, "beginner|intermediate|advanced")
	fs.StringVar(&np.Visibility, "visibility", project.VisibilityPublic, "public|private")
	start := fs.String("start", "", "Start date (YYYY-MM-DD).")
	end := fs.String("end", "", "End date (YYYY-MM-DD), optional.")
	if err := parse(fs, args, "name", "category", "start"); err != nil {
		return err
	}

	var err error
	if np.StartDate, err = parseDate(*start); err != nil {
		return err
	}
	if *end != "" {
		endDate, err := parseDate(*end)
		if err != nil {
			return err
		}
		np.EndDate = null.TimeFrom(endDate)
	}

	p, err := cli.client.CreateProject(ctx, np)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Created project %s (%s)\n", p.Name, p.ID)
	return nil
}
