package sqlrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tkabila/chekechea/core"
)

const dayFormat = "2006-01-02"

func sqlxNamedExec(ctx context.Context, exec core.DBExecutor, query string, arg interface{}) (sql.Result, error) {
	return sqlx.NamedExecContext(ctx, exec, query, arg)
}

// orderBy renders an ORDER BY clause from the requested ordering, falling
// back to the given default clause.
func orderBy(ordering []core.DBOrdering, fallback string) string {
	if len(ordering) == 0 {
		return " ORDER BY " + fallback
	}
	parts := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		parts = append(parts, ord.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// prefixOrdering qualifies ordering fields with a table alias.
func prefixOrdering(prefix string, ordering []core.DBOrdering) []core.DBOrdering {
	if ordering == nil {
		return nil
	}
	prefixed := make([]core.DBOrdering, 0, len(ordering))
	for _, ord := range ordering {
		ord.Field = prefix + ord.Field
		prefixed = append(prefixed, ord)
	}
	return prefixed
}

// localDay rebuilds the local-midnight day from a scanned `date` column,
// which pq returns at UTC midnight.
func localDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// textArray guards NOT NULL text[] columns against nil slices.
func textArray(vals []string) pq.StringArray {
	if vals == nil {
		return pq.StringArray{}
	}
	return vals
}
