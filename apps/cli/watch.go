package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/cache"
	"github.com/trezcool/masomo/core/task"
	"github.com/trezcool/masomo/services/backend"
)

// watchTasks renders the task list of a project on every change of its cache entry,
// until interrupted or after -n renders of a loaded list.
func (cli *commandLine) watchTasks(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("watch tasks")
	var flags listFilterFlags
	flags.bind(fs)
	poll := fs.Duration("poll", cli.poll, "Polling interval; 0 only re-fetches on changes.")
	renders := fs.Int("n", 0, "Stop after n renders; 0 runs until interrupted.")
	if err := parse(fs, args, "project"); err != nil {
		return err
	}

	var opts []cache.SubscribeOption
	if *poll > 0 {
		opts = append(opts, cache.WithPollingInterval(*poll))
	}
	w := backend.Watch(cli.client, backend.ListTasksEndpoint, backend.ListTasksArgs{
		ProjectID: flags.project,
		Filter:    flags.filter(),
	}, opts...)
	defer w.Close()

	count := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case v, ok := <-w.Updates():
			if !ok {
				return nil
			}
			done, err := cli.render(v)
			if err != nil {
				return err
			}
			if done {
				count++
				if *renders > 0 && count >= *renders {
					return nil
				}
			}
		}
	}
}

// render prints v; done is false while the first load is in progress.
func (cli *commandLine) render(v backend.View[core.List[task.Task]]) (done bool, err error) {
	stamp := time.Now().Format("15:04:05")
	switch {
	case v.IsLoading():
		fmt.Fprintf(cli.out, "[%s] loading...\n", stamp)
		return false, nil
	case v.IsError():
		fmt.Fprintf(cli.out, "[%s] ", stamp)
		printError(cli.out, v.Err)
		return true, nil
	case v.IsSuccess():
		state := ""
		if v.Fetching {
			state = " (refreshing)"
		}
		fmt.Fprintf(cli.out, "[%s] %d tasks%s\n", stamp, len(v.Data.Items), state)
		return !v.Fetching, cli.printTasks(cli.out, v.Data)
	}
	return false, nil
}
