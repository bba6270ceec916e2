package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cloudtask/cloudtask/internal/query"
	"github.com/cloudtask/cloudtask/internal/types"
)

// LocalStore is the sqlite-backed record store. It translates predicate
// documents into parameterized WHERE clauses, which makes it usable offline
// and as the backing store in tests.
type LocalStore struct {
	db *DB
}

// NewLocalStore creates a LocalStore on an open database.
func NewLocalStore(db *DB) *LocalStore {
	return &LocalStore{db: db}
}

// taskColumns maps canonical query field names to table columns. Only
// whitelisted fields reach SQL text; values always travel as parameters.
var taskColumns = map[string]string{
	"id":          "id",
	"title":       "title",
	"description": "description",
	"status":      "status",
	"priority":    "priority",
	"tags":        "tags",
	"project":     "project",
	"assigned_to": "assigned_to",
	"created":     "created_at",
	"updated":     "updated_at",
	"due_date":    "due_date",
}

// sqlOps maps predicate operator names to SQL comparison operators.
var sqlOps = map[string]string{
	"eq":  "=",
	"neq": "!=",
	"lt":  "<",
	"lte": "<=",
	"gt":  ">",
	"gte": ">=",
}

const taskSelect = `SELECT id, title, description, status, priority, tags, project, assigned_to, created_at, updated_at, due_date FROM tasks`

// Create inserts a new task, filling in the ID and timestamps.
func (s *LocalStore) Create(ctx context.Context, task *types.Task) (*types.Task, error) {
	t := *task
	if t.ID.IsZero() {
		t.ID = types.NewID()
	}
	if t.Status == "" {
		t.Status = types.TaskStatusPending
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := t.Validate(); err != nil {
		return nil, err
	}

	tagsJSON, err := json.Marshal(t.Tags)
	if err != nil {
		return nil, types.WrapError(types.STORE_QUERY_FAILED, "failed to marshal tags", err)
	}

	_, err = s.db.conn.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, tags, project, assigned_to, created_at, updated_at, due_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.Title, t.Description, t.Status.String(), t.Priority,
		string(tagsJSON), t.Project, t.AssignedTo, t.CreatedAt, t.UpdatedAt, t.DueDate,
	)
	if err != nil {
		return nil, types.WrapError(types.STORE_QUERY_FAILED, "failed to insert task", err)
	}
	return &t, nil
}

// Get fetches a task by ID.
func (s *LocalStore) Get(ctx context.Context, id types.ID) (*types.Task, error) {
	row := s.db.conn.QueryRowContext(ctx, taskSelect+` WHERE id = ?`, id.String())
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewError(types.STORE_NOT_FOUND, fmt.Sprintf("task %s not found", id))
	}
	if err != nil {
		return nil, types.WrapError(types.STORE_QUERY_FAILED, "failed to fetch task", err)
	}
	return task, nil
}

// Update applies a partial update and returns the updated task.
func (s *LocalStore) Update(ctx context.Context, id types.ID, update TaskUpdate) (*types.Task, error) {
	if update.IsEmpty() {
		return s.Get(ctx, id)
	}

	var sets []string
	var args []any
	if update.Status != nil {
		if !update.Status.IsValid() {
			return nil, types.NewError(types.TASK_INVALID, fmt.Sprintf("unknown task status %q", *update.Status))
		}
		sets = append(sets, "status = ?")
		args = append(args, update.Status.String())
	}
	if update.Priority != nil {
		if *update.Priority < 1 || *update.Priority > 10 {
			return nil, types.NewError(types.TASK_INVALID, fmt.Sprintf("task priority must be between 1 and 10 (got %d)", *update.Priority))
		}
		sets = append(sets, "priority = ?")
		args = append(args, *update.Priority)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC())
	args = append(args, id.String())

	res, err := s.db.conn.ExecContext(ctx,
		"UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, types.WrapError(types.STORE_QUERY_FAILED, "failed to update task", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, types.NewError(types.STORE_NOT_FOUND, fmt.Sprintf("task %s not found", id))
	}
	return s.Get(ctx, id)
}

// Delete removes a task by ID.
func (s *LocalStore) Delete(ctx context.Context, id types.ID) error {
	res, err := s.db.conn.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id.String())
	if err != nil {
		return types.WrapError(types.STORE_QUERY_FAILED, "failed to delete task", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.NewError(types.STORE_NOT_FOUND, fmt.Sprintf("task %s not found", id))
	}
	return nil
}

// Search runs a predicate search against the tasks table.
func (s *LocalStore) Search(ctx context.Context, req SearchRequest) ([]types.Task, error) {
	where, args, err := buildWhere(req.Filter)
	if err != nil {
		return nil, err
	}

	q := taskSelect
	if where != "" {
		q += " WHERE " + where
	}
	if req.OrderBy != "" {
		col, ok := taskColumns[req.OrderBy]
		if !ok {
			return nil, types.NewError(types.STORE_QUERY_FAILED, fmt.Sprintf("cannot order by unknown field %q", req.OrderBy))
		}
		q += " ORDER BY " + col
		if req.Descending {
			q += " DESC"
		}
	}
	if req.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", req.Limit)
	}

	rows, err := s.db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, types.WrapError(types.STORE_QUERY_FAILED, "search failed", err)
	}
	defer rows.Close()

	var tasks []types.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, types.WrapError(types.STORE_QUERY_FAILED, "failed to scan task", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.STORE_QUERY_FAILED, "search failed", err)
	}
	return tasks, nil
}

// buildWhere translates a predicate document into a parameterized WHERE
// clause. Fields are emitted in sorted order so the generated SQL is
// deterministic. Wildcard conditions match anything and produce no clause.
func buildWhere(q query.Query) (string, []any, error) {
	fields := make([]string, 0, len(q))
	for f := range q {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var clauses []string
	var args []any

	for _, field := range fields {
		col, ok := taskColumns[field]
		if !ok {
			return "", nil, types.NewError(types.STORE_QUERY_FAILED, fmt.Sprintf("cannot filter on unknown field %q", field))
		}

		for opName, value := range q[field] {
			if value.Kind == query.KindWildcard {
				continue
			}

			clause, clauseArgs, err := buildCondition(col, opName, value)
			if err != nil {
				return "", nil, err
			}
			if clause == "" {
				continue
			}
			clauses = append(clauses, clause)
			args = append(args, clauseArgs...)
		}
	}

	return strings.Join(clauses, " AND "), args, nil
}

// buildCondition renders one (column, operator, value) condition. Tags are
// stored as a JSON array in a text column, so membership tests use LIKE on
// the quoted element.
func buildCondition(col, opName string, value query.Value) (string, []any, error) {
	switch opName {
	case "in", "notin":
		if value.Kind != query.KindList {
			value = query.ListValue([]query.Value{value})
		}
		if col == "tags" {
			return tagsCondition(opName, value.List)
		}
		placeholders := make([]string, len(value.List))
		args := make([]any, len(value.List))
		for i, elem := range value.List {
			placeholders[i] = "?"
			args[i] = sqlArg(elem)
		}
		kw := "IN"
		if opName == "notin" {
			kw = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", col, kw, strings.Join(placeholders, ", ")), args, nil
	}

	sqlOp, ok := sqlOps[opName]
	if !ok {
		return "", nil, types.NewError(types.STORE_QUERY_FAILED, fmt.Sprintf("unsupported operator %q", opName))
	}

	if value.Kind == query.KindNull {
		switch opName {
		case "eq":
			return col + " IS NULL", nil, nil
		case "neq":
			return col + " IS NOT NULL", nil, nil
		default:
			return "", nil, types.NewError(types.STORE_QUERY_FAILED, fmt.Sprintf("operator %q does not accept null", opName))
		}
	}

	if col == "tags" && (opName == "eq" || opName == "neq") {
		cond, args, err := tagsCondition("in", []query.Value{value})
		if err != nil {
			return "", nil, err
		}
		if opName == "neq" {
			cond = "NOT (" + cond + ")"
		}
		return cond, args, nil
	}

	return fmt.Sprintf("%s %s ?", col, sqlOp), []any{sqlArg(value)}, nil
}

// tagsCondition matches any of the given elements against the JSON tags
// column.
func tagsCondition(opName string, elems []query.Value) (string, []any, error) {
	if len(elems) == 0 {
		return "", nil, nil
	}
	parts := make([]string, len(elems))
	args := make([]any, len(elems))
	for i, elem := range elems {
		parts[i] = "tags LIKE ?"
		args[i] = fmt.Sprintf(`%%"%v"%%`, sqlArg(elem))
	}
	cond := "(" + strings.Join(parts, " OR ") + ")"
	if opName == "notin" {
		cond = "NOT " + cond
	}
	return cond, args, nil
}

// sqlArg converts a coerced value to a driver argument.
func sqlArg(v query.Value) any {
	switch v.Kind {
	case query.KindBool:
		return v.Bool
	case query.KindNumber:
		return v.Num
	case query.KindNull:
		return nil
	default:
		return v.Str
	}
}

// scanner abstracts sql.Row and sql.Rows for scanTask.
type scanner interface {
	Scan(dest ...any) error
}

// scanTask reads one task row.
func scanTask(row scanner) (*types.Task, error) {
	var t types.Task
	var id, status, tagsJSON string
	var dueDate sql.NullTime

	err := row.Scan(&id, &t.Title, &t.Description, &status, &t.Priority,
		&tagsJSON, &t.Project, &t.AssignedTo, &t.CreatedAt, &t.UpdatedAt, &dueDate)
	if err != nil {
		return nil, err
	}

	t.ID = types.ID(id)
	t.Status = types.TaskStatus(status)
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if err := json.Unmarshal([]byte(tagsJSON), &t.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	return &t, nil
}
