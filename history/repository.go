package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("history: run not found")

// Run is one recorded generation: the resolved request, the pipeline
// it ran on, the output image and a small thumbnail for list views.
type Run struct {
	ID               string    // UUID assigned by the caller
	Prompt           string    // Positive prompt
	NegativePrompt   string    // Negative prompt, may be empty
	Steps            int       // Denoising steps actually used
	GuidanceScale    float64   // CFG scale actually used
	Width            int       // Output width in pixels
	Height           int       // Output height in pixels
	Seed             int64     // Seed the image was generated with
	Device           string    // Device the pipeline ran on
	DType            string    // Parameter dtype of the pipeline
	AttentionBackend string    // sdpa, flash2 or flash3
	Compile          bool      // Whether the DiT was compiled
	CPUOffload       bool      // Whether CPU offload was active
	LoRAName         string    // Adapter name, empty when none
	LoRAScale        float64   // Adapter blend scale
	Descriptor       string    // Human-readable settings summary
	Image            []byte    // PNG-encoded output
	Thumbnail        []byte    // PNG-encoded thumbnail
	DurationMS       int       // Wall-clock generation time
	CreatedAt        time.Time // Set by the database
}

// RunSummary is the list-view projection of a Run: everything except
// the image blobs.
type RunSummary struct {
	ID            string
	Prompt        string
	Steps         int
	GuidanceScale float64
	Width         int
	Height        int
	Seed          int64
	Device        string
	LoRAName      string
	Descriptor    string
	DurationMS    int
	CreatedAt     time.Time
}

// Repository provides CRUD operations on the runs table.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a Repository backed by the given store.
func NewRepository(store *Store) *Repository {
	return &Repository{db: store.DB()}
}

// InsertRun records a completed generation.
func (r *Repository) InsertRun(ctx context.Context, run Run) error {
	if r.db == nil {
		return fmt.Errorf("history: database connection is nil")
	}
	if run.ID == "" {
		return fmt.Errorf("history: run ID is required")
	}

	query := `
		INSERT INTO runs (
			id, prompt, negative_prompt, steps, guidance_scale,
			width, height, seed, device, dtype, attention_backend,
			compile, cpu_offload, lora_name, lora_scale, descriptor,
			image, thumbnail, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Prompt,
		nullString(run.NegativePrompt),
		run.Steps,
		run.GuidanceScale,
		run.Width,
		run.Height,
		run.Seed,
		run.Device,
		run.DType,
		run.AttentionBackend,
		boolToInt(run.Compile),
		boolToInt(run.CPUOffload),
		nullString(run.LoRAName),
		run.LoRAScale,
		run.Descriptor,
		run.Image,
		run.Thumbnail,
		run.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetRun retrieves a single run by ID, including image blobs.
func (r *Repository) GetRun(ctx context.Context, id string) (Run, error) {
	if r.db == nil {
		return Run{}, fmt.Errorf("history: database connection is nil")
	}

	query := `
		SELECT id, prompt, COALESCE(negative_prompt, ''), steps, guidance_scale,
			   width, height, seed, device, dtype, attention_backend,
			   compile, cpu_offload, COALESCE(lora_name, ''), lora_scale,
			   descriptor, image, thumbnail, duration_ms, created_at
		FROM runs
		WHERE id = ?`

	var run Run
	var compile, offload int
	var createdAt string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.Prompt,
		&run.NegativePrompt,
		&run.Steps,
		&run.GuidanceScale,
		&run.Width,
		&run.Height,
		&run.Seed,
		&run.Device,
		&run.DType,
		&run.AttentionBackend,
		&compile,
		&offload,
		&run.LoRAName,
		&run.LoRAScale,
		&run.Descriptor,
		&run.Image,
		&run.Thumbnail,
		&run.DurationMS,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("query run: %w", err)
	}

	run.Compile = compile != 0
	run.CPUOffload = offload != 0
	run.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdAt)
	return run, nil
}

// ListRuns retrieves the most recent run summaries, newest first.
// Blobs are excluded to keep list responses small.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if r.db == nil {
		return nil, fmt.Errorf("history: database connection is nil")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, prompt, steps, guidance_scale, width, height, seed,
			   device, COALESCE(lora_name, ''), descriptor, duration_ms, created_at
		FROM runs
		ORDER BY created_at DESC, id
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var s RunSummary
		var createdAt string
		err := rows.Scan(
			&s.ID,
			&s.Prompt,
			&s.Steps,
			&s.GuidanceScale,
			&s.Width,
			&s.Height,
			&s.Seed,
			&s.Device,
			&s.LoRAName,
			&s.Descriptor,
			&s.DurationMS,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		s.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdAt)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return summaries, nil
}

// CountRuns returns the total number of recorded runs.
func (r *Repository) CountRuns(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("history: database connection is nil")
	}
	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return count, nil
}

// DeleteRun removes a run by ID. Deleting a missing run returns
// ErrRunNotFound.
func (r *Repository) DeleteRun(ctx context.Context, id string) error {
	if r.db == nil {
		return fmt.Errorf("history: database connection is nil")
	}
	result, err := r.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// nullString converts an empty string to a NULL for storage.
func nullString(s string) interface{} {
	if s == "" {
		return sql.NullString{}
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
