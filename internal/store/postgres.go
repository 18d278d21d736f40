package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kraftworks/kraft/internal/domain"
	"github.com/kraftworks/kraft/internal/engine"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const taskColumns = `task_id, task_name, description, required_skills,
	priority, estimated_hours, deadline, dependencies,
	status, assignee_id, created_at`

func (s *PostgresStore) CreateTask(ctx context.Context, task *domain.Task) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO tasks (task_name, description, required_skills,
			priority, estimated_hours, deadline, dependencies, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING task_id, created_at`,
		task.Name, task.Description, task.RequiredSkills,
		task.Priority, task.EstimatedHours, task.Deadline, task.Dependencies, task.Status,
	).Scan(&task.ID, &task.CreatedAt)
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	t := &domain.Task{}
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.RequiredSkills,
		&t.Priority, &t.EstimatedHours, &t.Deadline, &t.Dependencies,
		&t.Status, &t.AssigneeID, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *PostgresStore) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	t, err := scanTask(s.pool.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE task_id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func (s *PostgresStore) ListTasks(ctx context.Context, filter TaskFilter) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Status != "" {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(filter.Status))
	}
	if len(filter.IDs) > 0 {
		n++
		query += fmt.Sprintf(" AND task_id = ANY($%d)", n)
		args = append(args, filter.IDs)
	}
	query += " ORDER BY created_at, task_id"
	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

const memberColumns = `member_id, name, skills, availability_hours,
	current_load, status, exclusions, completed_by_skill, on_time_rate`

func (s *PostgresStore) CreateMember(ctx context.Context, m *domain.Agent) error {
	var completedJSON []byte
	var onTimeRate *float64
	if m.History != nil {
		completedJSON, _ = json.Marshal(m.History.CompletedBySkill)
		onTimeRate = m.History.OnTimeRate
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO team_members (name, skills, availability_hours,
			current_load, status, exclusions, completed_by_skill, on_time_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING member_id`,
		m.Name, m.Skills, m.AvailabilityHours,
		m.CurrentLoad, m.Status, m.Exclusions, completedJSON, onTimeRate,
	).Scan(&m.ID)
}

func scanMember(row pgx.Row) (*domain.Agent, error) {
	m := &domain.Agent{}
	var completedJSON []byte
	var onTimeRate *float64
	err := row.Scan(
		&m.ID, &m.Name, &m.Skills, &m.AvailabilityHours,
		&m.CurrentLoad, &m.Status, &m.Exclusions, &completedJSON, &onTimeRate,
	)
	if err != nil {
		return nil, err
	}
	if completedJSON != nil || onTimeRate != nil {
		m.History = &domain.AgentHistory{OnTimeRate: onTimeRate}
		if completedJSON != nil {
			_ = json.Unmarshal(completedJSON, &m.History.CompletedBySkill)
		}
	}
	return m, nil
}

func (s *PostgresStore) GetMember(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	m, err := scanMember(s.pool.QueryRow(ctx, `
		SELECT `+memberColumns+` FROM team_members WHERE member_id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (s *PostgresStore) ListMembers(ctx context.Context, filter MemberFilter) ([]*domain.Agent, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Status != "" {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(filter.Status))
	}
	if len(filter.IDs) > 0 {
		n++
		query += fmt.Sprintf(" AND member_id = ANY($%d)", n)
		args = append(args, filter.IDs)
	}
	query += " ORDER BY name, member_id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*domain.Agent
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *PostgresStore) CreateConstraint(ctx context.Context, c *domain.Constraint) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO constraints (name, type, category, weight, is_active, threshold)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING constraint_id`,
		c.Name, c.Type, c.Category, c.Weight, c.IsActive, c.Threshold,
	).Scan(&c.ID)
}

func (s *PostgresStore) ListConstraints(ctx context.Context, activeOnly bool) ([]*domain.Constraint, error) {
	query := `SELECT constraint_id, name, type, category, weight, is_active, threshold
		FROM constraints`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name, constraint_id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var constraints []*domain.Constraint
	for rows.Next() {
		c := &domain.Constraint{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Category, &c.Weight, &c.IsActive, &c.Threshold); err != nil {
			return nil, err
		}
		constraints = append(constraints, c)
	}
	return constraints, rows.Err()
}

func (s *PostgresStore) PreAllocationStats(ctx context.Context) (*PreAllocationStats, error) {
	stats := &PreAllocationStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM tasks),
			(SELECT COUNT(*) FROM tasks WHERE status = 'unassigned'),
			(SELECT COUNT(*) FROM tasks WHERE status = 'assigned'),
			(SELECT COUNT(*) FROM team_members),
			(SELECT COUNT(*) FROM team_members WHERE status = 'available'),
			(SELECT COUNT(DISTINCT skill) FROM team_members, unnest(skills) AS skill)`,
	).Scan(
		&stats.TotalTasks, &stats.UnassignedTasks, &stats.AssignedTasks,
		&stats.TotalMembers, &stats.AvailableMembers, &stats.TotalSkills,
	)
	if err != nil {
		return nil, fmt.Errorf("pre-allocation stats: %w", err)
	}
	return stats, nil
}

func (s *PostgresStore) ApplyRun(ctx context.Context, result *engine.RunResult) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin apply run: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO allocation_runs (run_id, strategy, applied,
			tasks_processed, successful_allocations, summary, overall_explanation, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		result.RunID, result.Strategy, result.Applied,
		result.TasksProcessed, result.SuccessfulAllocations,
		result.Summary, result.OverallExplanation, result.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert allocation run: %w", err)
	}

	for i := range result.Assignments {
		a := &result.Assignments[i]
		_, err = tx.Exec(ctx, `
			INSERT INTO allocations (run_id, task_id, member_id, score, predicted_hours, explanation)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			result.RunID, a.TaskID, a.AgentID, a.Score, a.PredictedHours, a.Explanation,
		)
		if err != nil {
			return fmt.Errorf("insert allocation for task %s: %w", a.TaskID, err)
		}
		_, err = tx.Exec(ctx, `
			UPDATE tasks SET status = 'assigned', assignee_id = $2
			WHERE task_id = $1`,
			a.TaskID, a.AgentID,
		)
		if err != nil {
			return fmt.Errorf("update task %s: %w", a.TaskID, err)
		}
		_, err = tx.Exec(ctx, `
			UPDATE team_members
			SET current_load = current_load + COALESCE(
				(SELECT estimated_hours FROM tasks WHERE task_id = $1), 0)
			WHERE member_id = $2`,
			a.TaskID, a.AgentID,
		)
		if err != nil {
			return fmt.Errorf("update member %s load: %w", a.AgentID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit apply run: %w", err)
	}
	return nil
}
