package sqlite

import (
	"context"

	"github.com/stocklot/stocklot/pkg/listq"
)

// listCounts returns the unfiltered and the filtered row counts for a list
// request. Both counts come from the same handle, so inside a transaction
// they are consistent with the page query.
func listCounts(ctx context.Context, q dbtx, table string, pred listq.Predicate) (total, filtered int64, err error) {
	if err = q.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&total); err != nil {
		return 0, 0, err
	}

	if pred.IsEmpty() {
		return total, total, nil
	}

	query := `SELECT COUNT(*) FROM ` + table + ` WHERE ` + pred.Where
	if err = q.QueryRowContext(ctx, query, pred.Args...).Scan(&filtered); err != nil {
		return 0, 0, err
	}
	return total, filtered, nil
}

// listQuery assembles the paged SELECT for a list request. The order column
// comes from the registry, never from raw client input.
func listQuery(columns, table string, pred listq.Predicate, orderBy string, req listq.Request) (string, []any) {
	query := `SELECT ` + columns + ` FROM ` + table
	args := make([]any, 0, len(pred.Args)+2)

	if !pred.IsEmpty() {
		query += ` WHERE ` + pred.Where
		args = append(args, pred.Args...)
	}

	dir := " ASC"
	if !req.Ascending() {
		dir = " DESC"
	}
	query += ` ORDER BY ` + orderBy + dir + ` LIMIT ? OFFSET ?`
	args = append(args, req.PageSize(), req.Offset())

	return query, args
}
