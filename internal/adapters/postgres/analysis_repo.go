package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/areainsight/internal/core/domain"
)

// AnalysisRepo implements ports.AnalysisRepository.
type AnalysisRepo struct {
	db *DB
}

func NewAnalysisRepo(db *DB) *AnalysisRepo {
	return &AnalysisRepo{db: db}
}

const analysisColumns = `
	id, session_id, user_id, north, south, east, west,
	ST_Y(center::geometry) AS lat, ST_X(center::geometry) AS lon,
	snapshot, narrative, language, kind, sections, created_at`

func (r *AnalysisRepo) Insert(ctx context.Context, a *domain.Analysis) error {
	var snapshot []byte
	if a.Snapshot != nil {
		var err error
		if snapshot, err = json.Marshal(a.Snapshot); err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}
	}
	sections, err := json.Marshal(a.Sections)
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO analyses (id, session_id, user_id, north, south, east, west, center,
			snapshot, narrative, language, kind, sections, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, ST_SetSRID(ST_MakePoint($8, $9), 4326)::geography,
			$10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO NOTHING
	`, a.ID, nilIfEmpty(a.SessionID), nilIfEmpty(a.UserID),
		a.Region.North, a.Region.South, a.Region.East, a.Region.West,
		a.Center.Lon, a.Center.Lat,
		snapshot, a.Narrative.Text, a.Narrative.Language, string(a.Narrative.Kind), sections, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (r *AnalysisRepo) GetByID(ctx context.Context, id string) (*domain.Analysis, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE id = $1`, id)
	a, err := scanAnalysis(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListByUser returns one page of a user's analyses, newest first, and the
// user's total count.
func (r *AnalysisRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]domain.Analysis, int, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+analysisColumns+`, COUNT(*) OVER () AS total
		FROM analyses
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		OFFSET $2 LIMIT $3
	`, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Analysis
	total := 0
	for rows.Next() {
		a, n, err := scanAnalysisWithTotal(rows)
		if err != nil {
			return nil, 0, err
		}
		total = n
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(out) == 0 && offset > 0 {
		// page past the end; count separately
		if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM analyses WHERE user_id = $1`, userID).Scan(&total); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

// FindNearby returns analyses within radiusMeters using PostGIS ST_DWithin.
func (r *AnalysisRepo) FindNearby(ctx context.Context, center domain.GeoPoint, radiusMeters float64, limit int) ([]domain.Analysis, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+analysisColumns+`
		FROM analyses
		WHERE ST_DWithin(center, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY ST_Distance(center, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography), created_at DESC
		LIMIT $4
	`, center.Lon, center.Lat, radiusMeters, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *AnalysisRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAnalysis(row pgx.Row) (*domain.Analysis, error) {
	a, dest := analysisDest()
	if err := row.Scan(dest.targets()...); err != nil {
		return nil, err
	}
	return dest.finish(a)
}

func scanAnalysisWithTotal(rows pgx.Rows) (*domain.Analysis, int, error) {
	a, dest := analysisDest()
	var total int
	if err := rows.Scan(append(dest.targets(), &total)...); err != nil {
		return nil, 0, err
	}
	a, err := dest.finish(a)
	return a, total, err
}

// scanDest holds nullable and JSON columns until they are decoded.
type scanDest struct {
	a         *domain.Analysis
	sessionID *string
	userID    *string
	kind      string
	snapshot  []byte
	sections  []byte
}

func analysisDest() (*domain.Analysis, *scanDest) {
	a := &domain.Analysis{}
	return a, &scanDest{a: a}
}

func (d *scanDest) targets() []any {
	a := d.a
	return []any{
		&a.ID, &d.sessionID, &d.userID,
		&a.Region.North, &a.Region.South, &a.Region.East, &a.Region.West,
		&a.Center.Lat, &a.Center.Lon,
		&d.snapshot, &a.Narrative.Text, &a.Narrative.Language, &d.kind, &d.sections, &a.CreatedAt,
	}
}

func (d *scanDest) finish(a *domain.Analysis) (*domain.Analysis, error) {
	if d.sessionID != nil {
		a.SessionID = *d.sessionID
	}
	if d.userID != nil {
		a.UserID = *d.userID
	}
	a.Narrative.Kind = domain.ReportKind(d.kind)
	if len(d.snapshot) > 0 {
		var snap domain.BusinessSnapshot
		if err := json.Unmarshal(d.snapshot, &snap); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		a.Snapshot = &snap
	}
	if len(d.sections) > 0 {
		if err := json.Unmarshal(d.sections, &a.Sections); err != nil {
			return nil, fmt.Errorf("decode sections: %w", err)
		}
	}
	return a, nil
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
