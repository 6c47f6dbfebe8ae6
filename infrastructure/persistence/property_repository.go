package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domainerrors "propgen/domain/errors"
	"propgen/domain/model"
	"propgen/domain/repository"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const propertyColumns = `id, user_id, source_url, title, description, price, address, images, agent,
	generated_images, captions, hashtags, publish_state, status, created_at, updated_at`

// PropertyRepository persists property records in PostgreSQL (native sql.DB)
type PropertyRepository struct {
	db *sql.DB
}

func NewPropertyRepository(db *sql.DB) *PropertyRepository { return &PropertyRepository{db: db} }

var _ repository.IProperty = (*PropertyRepository)(nil)

func (r *PropertyRepository) Create(ctx context.Context, p *model.Property) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	agent, err := marshalNullable(p.Agent)
	if err != nil {
		return errors.Wrap(err, "marshal agent")
	}
	generated, captions, publish, err := marshalPropertyMaps(p)
	if err != nil {
		return err
	}
	q := `INSERT INTO properties (` + propertyColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`
	_, err = r.db.ExecContext(ctx, q,
		p.ID, p.UserID, p.SourceURL, p.Title, p.Description, p.Price, p.Address,
		pq.Array(nonNil(p.Images)), agent, generated, captions, pq.Array(nonNil(p.Hashtags)), publish,
		string(p.Status), p.CreatedAt, p.UpdatedAt)
	return errors.Wrap(err, "insert property")
}

func (r *PropertyRepository) GetByID(ctx context.Context, id, userID string) (*model.Property, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id=$1 AND user_id=$2`, id, userID)
	p, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return nil, domainerrors.ErrPropertyNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select property")
	}
	return p, nil
}

func (r *PropertyRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Property, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "list properties")
	}
	defer rows.Close()
	list := make([]*model.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan property")
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *PropertyRepository) UpdateContent(ctx context.Context, id, userID string, captions map[string]string, hashtags []string) error {
	raw, err := json.Marshal(nonNilMap(captions))
	if err != nil {
		return errors.Wrap(err, "marshal captions")
	}
	res, err := r.db.ExecContext(ctx, `UPDATE properties SET captions=$1, hashtags=$2, updated_at=$3 WHERE id=$4 AND user_id=$5`,
		raw, pq.Array(nonNil(hashtags)), time.Now().UTC(), id, userID)
	return affectedOne(res, err, "update captions")
}

// MergeGeneratedImages merges format -> url pairs into generated_images without touching other formats
func (r *PropertyRepository) MergeGeneratedImages(ctx context.Context, id, userID string, images map[string]string) error {
	raw, err := json.Marshal(nonNilMap(images))
	if err != nil {
		return errors.Wrap(err, "marshal generated images")
	}
	res, err := r.db.ExecContext(ctx, `UPDATE properties SET generated_images = COALESCE(generated_images, '{}'::jsonb) || $1::jsonb, updated_at=$2 WHERE id=$3 AND user_id=$4`,
		raw, time.Now().UTC(), id, userID)
	return affectedOne(res, err, "merge generated images")
}

func (r *PropertyRepository) RecordPublish(ctx context.Context, id, userID, platform string, state model.PublishState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "marshal publish state")
	}
	res, err := r.db.ExecContext(ctx, `UPDATE properties SET publish_state = COALESCE(publish_state, '{}'::jsonb) || jsonb_build_object($1::text, $2::jsonb), updated_at=$3 WHERE id=$4 AND user_id=$5`,
		platform, raw, time.Now().UTC(), id, userID)
	return affectedOne(res, err, "record publish")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (*model.Property, error) {
	p := &model.Property{}
	var images, hashtags pq.StringArray
	var agent, generated, captions, publish []byte
	var status string
	if err := row.Scan(&p.ID, &p.UserID, &p.SourceURL, &p.Title, &p.Description, &p.Price, &p.Address,
		&images, &agent, &generated, &captions, &hashtags, &publish, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Images = []string(images)
	p.Hashtags = []string(hashtags)
	p.Status = model.PropertyStatus(status)
	if len(agent) > 0 && string(agent) != "null" {
		p.Agent = &model.Agent{}
		if err := json.Unmarshal(agent, p.Agent); err != nil {
			return nil, err
		}
	}
	p.GeneratedImages = map[string]string{}
	p.Captions = map[string]string{}
	p.PublishState = map[string]model.PublishState{}
	for _, f := range []struct {
		raw []byte
		dst any
	}{{generated, &p.GeneratedImages}, {captions, &p.Captions}, {publish, &p.PublishState}} {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func marshalPropertyMaps(p *model.Property) (generated, captions, publish []byte, err error) {
	if generated, err = json.Marshal(nonNilMap(p.GeneratedImages)); err != nil {
		return nil, nil, nil, errors.Wrap(err, "marshal generated images")
	}
	if captions, err = json.Marshal(nonNilMap(p.Captions)); err != nil {
		return nil, nil, nil, errors.Wrap(err, "marshal captions")
	}
	state := p.PublishState
	if state == nil {
		state = map[string]model.PublishState{}
	}
	if publish, err = json.Marshal(state); err != nil {
		return nil, nil, nil, errors.Wrap(err, "marshal publish state")
	}
	return generated, captions, publish, nil
}

func marshalNullable(v *model.Agent) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func affectedOne(res sql.Result, err error, op string) error {
	if err != nil {
		return errors.Wrap(err, op)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, op)
	}
	if n == 0 {
		return domainerrors.ErrPropertyNotFound
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
