package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudtask/cloudtask/cmd/cloudtask/internal"
	"github.com/cloudtask/cloudtask/internal/cache"
	"github.com/cloudtask/cloudtask/internal/executor"
	"github.com/cloudtask/cloudtask/internal/query"
	"github.com/cloudtask/cloudtask/internal/store"
	"github.com/cloudtask/cloudtask/internal/types"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long:  `Create, search, update and delete tasks`,
}

var taskCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new task",
	RunE:  runTaskCreate,
}

var taskSearchCmd = &cobra.Command{
	Use:   "search [QUERY...]",
	Short: "Search for tasks using query syntax",
	Long: `Search for tasks with complex filtering.

Query Examples:
  cloudtask task search "priority >= 7 status == active"
  cloudtask task search "tags in [work,urgent] assigned_to != null"
  cloudtask task search "created > 2024-01-01"

Available Fields:
  id, title, description, status, priority, tags,
  created, updated, due_date, assigned_to, project

Operators:
  <, <=, ==, !=, >=, >, in, notin`,
	RunE: runTaskSearch,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long:  `List tasks, equivalent to a search with an empty query`,
	Args:  cobra.NoArgs,
	RunE:  runTaskSearch,
}

var taskShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show detailed task information",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update ID...",
	Short: "Update one or more tasks",
	Long: `Update one or more tasks concurrently. Each task is updated
independently with per-item retries; a failed task never aborts the rest
of the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTaskUpdate,
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDelete,
}

// Flags for task create
var (
	createTitle       string
	createDescription string
	createPriority    int
	createTags        string
	createProject     string
	createAssignedTo  string
	createDue         string
)

// Flags for task search and list
var (
	searchLimit   int
	searchOrder   string
	searchNoCache bool
)

// Flags for task update
var (
	updateStatus   string
	updatePriority int
)

// Flags for task delete
var (
	deleteForce bool
)

func init() {
	taskCreateCmd.Flags().StringVar(&createTitle, "title", "", "Task title - required")
	taskCreateCmd.Flags().StringVar(&createDescription, "description", "", "Task description")
	taskCreateCmd.Flags().IntVar(&createPriority, "priority", 5, "Priority from 1 to 10")
	taskCreateCmd.Flags().StringVar(&createTags, "tags", "", "Comma-separated tags")
	taskCreateCmd.Flags().StringVar(&createProject, "project", "", "Project name")
	taskCreateCmd.Flags().StringVar(&createAssignedTo, "assigned-to", "", "Assignee")
	taskCreateCmd.Flags().StringVar(&createDue, "due", "", "Due date (YYYY-MM-DD or RFC3339)")
	taskCreateCmd.MarkFlagRequired("title")

	for _, c := range []*cobra.Command{taskSearchCmd, taskListCmd} {
		c.Flags().IntVar(&searchLimit, "limit", 50, "Maximum results")
		c.Flags().StringVar(&searchOrder, "order", "priority-", "Sort order (field for ascending, field- for descending)")
		c.Flags().BoolVar(&searchNoCache, "no-cache", false, "Bypass the search result cache")
	}

	taskUpdateCmd.Flags().StringVar(&updateStatus, "status", "", "New status (pending, active, done, archived)")
	taskUpdateCmd.Flags().IntVar(&updatePriority, "priority", 0, "New priority from 1 to 10")

	taskDeleteCmd.Flags().BoolVar(&deleteForce, "force", false, "Skip confirmation prompt")

	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskSearchCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	taskCmd.AddCommand(taskDeleteCmd)
}

// taskSchema is the filter schema shared by search and list.
func taskSchema() query.Schema {
	return query.Schema{
		ValidFields: types.QueryFields,
		Aliases:     types.QueryAliases,
	}
}

// runTaskCreate executes the task create command
func runTaskCreate(cmd *cobra.Command, args []string) error {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return err
	}

	task := &types.Task{
		Title:       createTitle,
		Description: createDescription,
		Priority:    createPriority,
		Project:     createProject,
		AssignedTo:  createAssignedTo,
	}
	if createTags != "" {
		task.Tags = splitTags(createTags)
	}
	if createDue != "" {
		due, err := parseDueDate(createDue)
		if err != nil {
			return err
		}
		task.DueDate = due
	}
	if err := task.Validate(); err != nil {
		return err
	}

	formatter := internal.NewFormatter(flags.GetOutputFormat(), cmd.OutOrStdout())

	if flags.Explain {
		return formatter.PrintJSON(task)
	}

	st, closeStore, err := openStore(flags)
	if err != nil {
		return err
	}
	defer closeStore()

	created, err := st.Create(cmd.Context(), task)
	if err != nil {
		return err
	}

	if flags.GetOutputFormat() == internal.FormatJSON {
		return formatter.PrintJSON(created)
	}
	return formatter.PrintSuccess(fmt.Sprintf("Task created (ID: %s)", created.ID))
}

// runTaskSearch executes the task search and task list commands
func runTaskSearch(cmd *cobra.Command, args []string) error {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return err
	}

	filter, err := query.Parse(strings.Join(args, " "), taskSchema(), nil)
	if err != nil {
		return err
	}

	orderBy, descending, err := parseOrder(searchOrder)
	if err != nil {
		return err
	}

	req := store.SearchRequest{
		Filter:     filter,
		OrderBy:    orderBy,
		Descending: descending,
		Limit:      searchLimit,
	}

	formatter := internal.NewFormatter(flags.GetOutputFormat(), cmd.OutOrStdout())

	if flags.Explain {
		return formatter.PrintJSON(store.SearchBody(req))
	}

	tasks, err := searchWithCache(cmd.Context(), flags, req)
	if err != nil {
		return err
	}

	if flags.GetOutputFormat() == internal.FormatJSON {
		return formatter.PrintJSON(map[string]any{"tasks": tasks})
	}

	if len(tasks) == 0 {
		cmd.Println("No tasks found.")
		return nil
	}

	rows := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, internal.TaskRow(task))
	}
	return formatter.PrintTable(internal.TaskTableHeaders, rows)
}

// searchWithCache runs a search, consulting the file cache for remote
// searches when caching is enabled.
func searchWithCache(ctx context.Context, flags *GlobalFlags, req store.SearchRequest) ([]types.Task, error) {
	st, closeStore, err := openStore(flags)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	// The local store is already on disk; only API results are cached.
	useCache := appCfg.Cache.Enabled && !searchNoCache && !flags.Local
	if !useCache {
		return st.Search(ctx, req)
	}

	c := cache.New(appCfg.Cache.Dir, appCfg.Cache.TTL)
	key, err := cache.Key(store.SearchBody(req))
	if err != nil {
		return nil, err
	}

	var cached []types.Task
	if hit, err := c.Get(key, &cached); err == nil && hit {
		return cached, nil
	}

	tasks, err := st.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := c.Set(key, tasks); err != nil {
		// A cache write failure degrades to uncached operation.
		return tasks, nil
	}
	return tasks, nil
}

// runTaskShow executes the task show command
func runTaskShow(cmd *cobra.Command, args []string) error {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return err
	}

	id, err := types.ParseID(args[0])
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(flags)
	if err != nil {
		return err
	}
	defer closeStore()

	task, err := st.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	if flags.GetOutputFormat() == internal.FormatJSON {
		return internal.NewFormatter(internal.FormatJSON, cmd.OutOrStdout()).PrintJSON(task)
	}
	return printTaskDetail(cmd, task)
}

// printTaskDetail displays a task in human-readable text format
func printTaskDetail(cmd *cobra.Command, task *types.Task) error {
	cmd.Printf("Task: %s\n", task.Title)
	cmd.Printf("ID: %s\n", task.ID)
	cmd.Printf("Status: %s\n", internal.NewTextFormatter(cmd.OutOrStdout()).StyleStatus(task.Status))
	cmd.Printf("Priority: %d\n", task.Priority)

	if task.Description != "" {
		cmd.Printf("Description: %s\n", task.Description)
	}
	if len(task.Tags) > 0 {
		cmd.Printf("Tags: %s\n", strings.Join(task.Tags, ", "))
	}
	if task.Project != "" {
		cmd.Printf("Project: %s\n", task.Project)
	}
	if task.AssignedTo != "" {
		cmd.Printf("Assigned To: %s\n", task.AssignedTo)
	}
	if task.DueDate != nil {
		cmd.Printf("Due: %s\n", task.DueDate.Format("2006-01-02"))
	}

	cmd.Printf("\nCreated: %s\n", task.CreatedAt.Format(time.RFC3339))
	cmd.Printf("Updated: %s\n", task.UpdatedAt.Format(time.RFC3339))
	return nil
}

// runTaskUpdate executes the task update command as a concurrent batch
func runTaskUpdate(cmd *cobra.Command, args []string) error {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return err
	}

	update := store.TaskUpdate{}
	if cmd.Flags().Changed("status") {
		status := types.TaskStatus(updateStatus)
		if !status.IsValid() {
			return fmt.Errorf("invalid status: %s (must be pending, active, done or archived)", updateStatus)
		}
		update.Status = &status
	}
	if cmd.Flags().Changed("priority") {
		if updatePriority < 1 || updatePriority > 10 {
			return fmt.Errorf("invalid priority: %d (must be between 1 and 10)", updatePriority)
		}
		update.Priority = &updatePriority
	}
	if update.IsEmpty() {
		return fmt.Errorf("nothing to update: pass --status and/or --priority")
	}

	ids := make([]types.ID, 0, len(args))
	for _, arg := range args {
		id, err := types.ParseID(arg)
		if err != nil {
			return fmt.Errorf("invalid task ID %q: %w", arg, err)
		}
		ids = append(ids, id)
	}

	formatter := internal.NewFormatter(flags.GetOutputFormat(), cmd.OutOrStdout())

	if flags.Explain {
		body := map[string]any{"ids": ids}
		if update.Status != nil {
			body["status"] = *update.Status
		}
		if update.Priority != nil {
			body["priority"] = *update.Priority
		}
		return formatter.PrintJSON(body)
	}

	st, closeStore, err := openStore(flags)
	if err != nil {
		return err
	}
	defer closeStore()

	updated, failures := executor.Execute(cmd.Context(),
		func(ctx context.Context, id types.ID) (*types.Task, error) {
			return st.Update(ctx, id, update)
		},
		ids,
		executor.Config{
			MaxWorkers: appCfg.Core.ParallelLimit,
			Policy:     appCfg.API.RetryPolicy(),
		},
	)

	return reportUpdateOutcome(formatter, ids, updated, failures)
}

// reportUpdateOutcome prints per-item results and maps the batch outcome to
// an exit code: partial failure when some items failed, a plain error when
// all did.
func reportUpdateOutcome(formatter internal.Formatter, ids []types.ID, updated []*types.Task, failures []executor.ItemError) error {
	for _, task := range updated {
		if err := formatter.PrintSuccess(fmt.Sprintf("Updated task %s", task.ID)); err != nil {
			return err
		}
	}
	for _, f := range failures {
		if err := formatter.PrintError(fmt.Sprintf("Task %s failed after %d attempt(s): %v", ids[f.Index], f.Attempts, f.Err)); err != nil {
			return err
		}
	}

	if len(failures) == 0 {
		return nil
	}
	if len(updated) == 0 {
		return internal.NewCLIError(internal.ExitError,
			fmt.Sprintf("all %d update(s) failed", len(failures)))
	}
	return internal.NewCLIError(internal.ExitPartialFailure,
		fmt.Sprintf("%d of %d update(s) failed", len(failures), len(ids)))
}

// runTaskDelete executes the task delete command
func runTaskDelete(cmd *cobra.Command, args []string) error {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return err
	}

	id, err := types.ParseID(args[0])
	if err != nil {
		return err
	}

	if flags.Explain {
		cmd.Printf("Would delete task %s\n", id)
		return nil
	}

	if !deleteForce {
		cmd.Printf("Are you sure you want to delete task %s? (y/N): ", id)
		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			cmd.Println("Deletion cancelled.")
			return nil
		}
	}

	st, closeStore, err := openStore(flags)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := st.Delete(cmd.Context(), id); err != nil {
		return err
	}

	formatter := internal.NewFormatter(flags.GetOutputFormat(), cmd.OutOrStdout())
	return formatter.PrintSuccess(fmt.Sprintf("Task %s deleted", id))
}

// parseOrder splits an order spec like "priority-" into a field and a
// direction. A trailing "-" means descending, a trailing "+" (or nothing)
// ascending. The field goes through the same alias resolution as the filter.
func parseOrder(order string) (string, bool, error) {
	descending := strings.HasSuffix(order, "-")
	field := strings.TrimRight(order, "-+")
	if field == "" {
		return "", false, fmt.Errorf("invalid order spec %q", order)
	}

	canonical, err := taskSchema().Resolve(field)
	if err != nil {
		return "", false, err
	}
	return canonical, descending, nil
}

// parseDueDate accepts a bare date or a full RFC3339 timestamp.
func parseDueDate(s string) (*time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q (use YYYY-MM-DD or RFC3339)", s)
	}
	return &t, nil
}

// splitTags splits a comma-separated tag list, trimming whitespace.
func splitTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
