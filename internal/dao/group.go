package dao

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/leapstack-labs/schooldb/internal/model"
	"github.com/leapstack-labs/schooldb/internal/store"
)

const (
	insertGroupSQL = `INSERT INTO groups (id, name) VALUES (?, ?)`
	saveGroupSQL   = `INSERT INTO groups (name) VALUES (?) RETURNING id`
	findGroupsSQL  = `SELECT id, name FROM groups ORDER BY id`

	findGroupsByMaxStudentCountSQL = `
		SELECT groups.id, groups.name
		FROM groups
		LEFT JOIN students ON groups.id = students.group_id
		GROUP BY groups.id, groups.name
		HAVING COUNT(students.id) <= ?
		ORDER BY groups.id`
)

// GroupDAO reads and writes groups.
type GroupDAO struct {
	store *store.Store
}

// NewGroupDAO creates a GroupDAO on the given store.
func NewGroupDAO(s *store.Store) *GroupDAO {
	return &GroupDAO{store: s}
}

// InsertMany inserts groups with caller-supplied IDs.
func (d *GroupDAO) InsertMany(ctx context.Context, groups []model.Group) error {
	return insertBatch(ctx, d.store, "saving groups", "groups", insertGroupSQL, groups,
		func(g model.Group) int64 { return g.ID },
		func(g model.Group) []any { return []any{g.ID, g.Name} },
	)
}

// Save inserts a group and sets its generated ID.
func (d *GroupDAO) Save(ctx context.Context, group *model.Group) error {
	const op = "saving group"
	if group == nil {
		return contractError(op, "nil group")
	}
	if err := validateEntity(op, group); err != nil {
		return err
	}

	id, err := insertReturningID(ctx, d.store, op, saveGroupSQL, group.Name)
	if err != nil {
		return err
	}
	group.ID = id
	return nil
}

// FindAll returns every group ordered by ID.
func (d *GroupDAO) FindAll(ctx context.Context) ([]model.Group, error) {
	groups := []model.Group{}
	err := d.store.Do(ctx, func(q store.Querier) error {
		return sqlx.SelectContext(ctx, q, &groups, findGroupsSQL)
	})
	if err != nil {
		return nil, storeError("finding groups", err)
	}
	return groups, nil
}

// FindByMaxStudentCount returns the groups with at most n students, empty
// groups included.
func (d *GroupDAO) FindByMaxStudentCount(ctx context.Context, n int) ([]model.Group, error) {
	const op = "finding groups by max student count"
	if n < 0 {
		return nil, contractError(op, "negative student count")
	}

	groups := []model.Group{}
	err := d.store.Do(ctx, func(q store.Querier) error {
		return sqlx.SelectContext(ctx, q, &groups, q.Rebind(findGroupsByMaxStudentCountSQL), n)
	})
	if err != nil {
		return nil, storeError(op, err)
	}
	return groups, nil
}
