package statevocab

import (
	"context"
	"time"

	"qcdispatch/src/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

type VocabularyI interface {
	AllStateCodeToLabel(ctx context.Context) (map[string]string, error)
}

// Vocabulary enumerates the task state codes with their human-readable
// labels, loaded from the task_states table and cached in process. It is
// injected wherever state labels are resolved, so tests can substitute a
// synthetic vocabulary.
type Vocabulary struct {
	DB    *pgxpool.Pool
	cache *utils.Cache[map[string]string]
	ttl   time.Duration
}

func NewVocabulary(db *pgxpool.Pool, ttl time.Duration) *Vocabulary {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Vocabulary{
		DB:    db,
		cache: utils.NewCache[map[string]string](),
		ttl:   ttl,
	}
}

func (v *Vocabulary) AllStateCodeToLabel(ctx context.Context) (map[string]string, error) {
	if cached, found := v.cache.Get(time.Now()); found {
		return cached, nil
	}

	rows, err := v.DB.Query(ctx, `SELECT code, label FROM task_states ORDER BY code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := make(map[string]string)
	for rows.Next() {
		var code, label string
		if err := rows.Scan(&code, &label); err != nil {
			return nil, err
		}
		labels[code] = label
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	v.cache.Set(labels, v.ttl)
	return labels, nil
}
