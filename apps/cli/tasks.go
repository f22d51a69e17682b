package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/task"
	"github.com/trezcool/masomo/services/backend"
)

const nullHelp = `an ID, or "null" for none`

// listFilterFlags binds the flags of task list filters.
type listFilterFlags struct {
	project  string
	status   string
	priority string
	assignee string
	area     string
	search   string
	ordering string
	cursor   string
	limit    int
}

func (f *listFilterFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&f.project, "project", "", "Project ID.")
	fs.StringVar(&f.status, "status", "", strings.Join(task.AllStatuses, "|"))
	fs.StringVar(&f.priority, "priority", "", strings.Join(task.AllPriorities, "|"))
	fs.StringVar(&f.assignee, "assignee", "", "Assignee: "+nullHelp+".")
	fs.StringVar(&f.area, "area", "", "Project area: "+nullHelp+".")
	fs.StringVar(&f.search, "search", "", "Match title or description.")
	fs.StringVar(&f.ordering, "ordering", "", "eg: dueDate,-priority")
	fs.StringVar(&f.cursor, "cursor", "", "Cursor of the next page.")
	fs.IntVar(&f.limit, "limit", 0, "Page size.")
}

func (f listFilterFlags) filter() task.ListFilter {
	return task.ListFilter{
		Status:        f.status,
		Priority:      f.priority,
		AssigneeID:    core.ParseStringFilter(f.assignee, f.assignee != ""),
		ProjectAreaID: core.ParseStringFilter(f.area, f.area != ""),
		Search:        f.search,
		Ordering:      core.ParseOrderings(f.ordering),
		Page:          core.Page{Cursor: f.cursor, Limit: f.limit},
	}
}

func (cli *commandLine) listTasks(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("tasks list")
	var flags listFilterFlags
	flags.bind(fs)
	if err := parse(fs, args, "project"); err != nil {
		return err
	}

	list, err := cli.client.ListTasks(ctx, flags.project, flags.filter())
	if err != nil {
		return err
	}
	return cli.printTasks(cli.out, list)
}

func (cli *commandLine) myTasks(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("tasks mine")
	var filter task.MyFilter
	fs.StringVar(&filter.Status, "status", "", strings.Join(task.AllStatuses, "|"))
	fs.StringVar(&filter.Priority, "priority", "", strings.Join(task.AllPriorities, "|"))
	fs.StringVar(&filter.ProjectID, "project", "", "Project ID.")
	ordering := fs.String("ordering", "", "eg: dueDate")
	fs.StringVar(&filter.Cursor, "cursor", "", "Cursor of the next page.")
	fs.IntVar(&filter.Limit, "limit", 0, "Page size.")
	if err := parse(fs, args); err != nil {
		return err
	}
	filter.Ordering = core.ParseOrderings(*ordering)

	list, err := cli.client.MyTasks(ctx, filter)
	if err != nil {
		return err
	}
	return cli.printTasks(cli.out, list)
}

func (cli *commandLine) printTasks(out io.Writer, list core.List[task.Task]) error {
	w := cli.table("ID", "TITLE", "STATUS", "PRIORITY", "ASSIGNEE", "AREA", "DUE")
	for _, t := range list.Items {
		due := "-"
		if t.DueDate.Valid {
			due = t.DueDate.Time.Format("2006-01-02")
		}
		row(w, t.ID, t.Title, t.Status, t.Priority, orDash(t.AssigneeID.String), orDash(t.AreaID()), due)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	listFooter(out, list)
	return nil
}

func (cli *commandLine) createTask(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("tasks create")
	var nt task.NewTask
	projectID := fs.String("project", "", "Project ID.")
	fs.StringVar(&nt.Title, "title", "", "Title.")
	fs.StringVar(&nt.Description, "description", "", "Description.")
	fs.StringVar(&nt.Status, "status", task.StatusTodo, strings.Join(task.AllStatuses, "|"))
	fs.StringVar(&nt.Priority, "priority", task.PriorityMedium, strings.Join(task.AllPriorities, "|"))
	area := fs.String("area", "", "Project area ID.")
	assignee := fs.String("assignee", "", "Assignee ID.")
	due := fs.String("due", "", "Due date (YYYY-MM-DD).")
	if err := parse(fs, args, "project", "title"); err != nil {
		return err
	}

	if *area != "" {
		nt.ProjectAreaID = null.StringFrom(*area)
	}
	if *assignee != "" {
		nt.AssigneeID = null.StringFrom(*assignee)
	}
	if *due != "" {
		dueDate, err := parseDate(*due)
		if err != nil {
			return err
		}
		nt.DueDate = null.TimeFrom(dueDate)
	}

	t, err := cli.client.CreateTask(ctx, *projectID, nt)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Created task %s (%s)\n", t.Title, t.ID)
	return nil
}

// taskRef fetches the task to know its current area.
func (cli *commandLine) taskRef(ctx context.Context, projectID, id string) (backend.TaskRef, error) {
	t, err := cli.client.GetTask(ctx, projectID, id)
	if err != nil {
		return backend.TaskRef{}, err
	}
	return backend.RefOf(t), nil
}

func (cli *commandLine) setTaskStatus(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("tasks status")
	projectID := fs.String("project", "", "Project ID.")
	id := fs.String("id", "", "Task ID.")
	status := fs.String("status", "", strings.Join(task.AllStatuses, "|"))
	if err := parse(fs, args, "project", "id", "status"); err != nil {
		return err
	}

	ref, err := cli.taskRef(ctx, *projectID, *id)
	if err != nil {
		return err
	}
	t, err := cli.client.UpdateTaskStatus(ctx, ref, *status)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Task %s is now %s\n", t.ID, t.Status)
	return nil
}

func (cli *commandLine) gradeTask(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("tasks grade")
	var grade task.Grade
	projectID := fs.String("project", "", "Project ID.")
	id := fs.String("id", "", "Task ID.")
	fs.Float64Var(&grade.Score, "score", -1, "Score, 0 to 100.")
	fs.StringVar(&grade.Feedback, "feedback", "", "Feedback to the student.")
	if err := parse(fs, args, "project", "id"); err != nil {
		return err
	}

	ref, err := cli.taskRef(ctx, *projectID, *id)
	if err != nil {
		return err
	}
	t, err := cli.client.GradeTask(ctx, ref, grade)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Task %s graded %.0f\n", t.ID, t.Grading.Score)
	return nil
}
