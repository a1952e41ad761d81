package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/tkabila/chekechea/core"
	"github.com/tkabila/chekechea/core/child"
)

type childRepository struct {
	db *DB
}

func NewChildRepository(db *DB) child.Repository {
	return &childRepository{db: db}
}

func (r *childRepository) query() []child.Child {
	res := make([]child.Child, 0, len(r.db.child.t))
	for _, ch := range r.db.child.t {
		res = append(res, *ch)
	}
	return res
}

func (r *childRepository) CreateChild(ctx context.Context, ch child.Child, exec ...core.DBExecutor) (child.Child, error) {
	r.db.child.mutex.Lock()
	defer r.db.child.mutex.Unlock()

	ch.ID = uuid.New().String()
	r.db.child.t[ch.ID] = &ch
	return ch, nil
}

func (r *childRepository) GetChildByID(ctx context.Context, id string, exec ...core.DBExecutor) (child.Child, error) {
	r.db.child.mutex.RLock()
	defer r.db.child.mutex.RUnlock()

	if ch, ok := r.db.child.t[id]; ok {
		return *ch, nil
	}
	return child.Child{}, child.ErrNotFound
}

func (r *childRepository) QueryChildren(ctx context.Context, filter *child.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]child.Child, error) {
	r.db.child.mutex.RLock()
	defer r.db.child.mutex.RUnlock()

	res := make([]child.Child, 0)
	for _, ch := range r.query() {
		if filter != nil {
			if filter.Search != "" {
				search := strings.ToLower(filter.Search)
				if !strings.Contains(strings.ToLower(ch.Name), search) &&
					!strings.Contains(strings.ToLower(ch.GuardianName), search) {
					continue
				}
			}
			if filter.ParentID != "" && ch.ParentID != filter.ParentID {
				continue
			}
			if filter.Status != "" && ch.Status != filter.Status {
				continue
			}
		}
		res = append(res, ch)
	}

	// newest first, matching the SQL store's default
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (r *childRepository) UpdateChild(ctx context.Context, ch child.Child, exec ...core.DBExecutor) (child.Child, error) {
	r.db.child.mutex.Lock()
	defer r.db.child.mutex.Unlock()

	if _, ok := r.db.child.t[ch.ID]; !ok {
		return child.Child{}, child.ErrNotFound
	}
	r.db.child.t[ch.ID] = &ch
	return ch, nil
}

func (r *childRepository) DeleteChildrenByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	r.db.child.mutex.Lock()
	var cnt int
	for _, id := range ids {
		if _, ok := r.db.child.t[id]; ok {
			delete(r.db.child.t, id)
			cnt++
		}
	}
	r.db.child.mutex.Unlock()

	r.cascade(ids)
	return cnt, nil
}

// cascade mirrors the SQL store's ON DELETE CASCADE on child references.
func (r *childRepository) cascade(ids []string) {
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
	}

	r.db.attendance.mutex.Lock()
	for id, rec := range r.db.attendance.t {
		if gone[rec.ChildID] {
			delete(r.db.attendance.t, id)
		}
	}
	r.db.attendance.mutex.Unlock()

	r.db.invoice.mutex.Lock()
	for id, inv := range r.db.invoice.t {
		if gone[inv.ChildID] {
			delete(r.db.invoice.t, id)
		}
	}
	r.db.invoice.mutex.Unlock()
}
