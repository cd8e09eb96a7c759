package repos

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	m "github.com/ximlor/inv-nbs/data/models"
	q "github.com/ximlor/inv-nbs/data/queries"
)

const returnTableCell = "return_table_cell"

var returnTableCellColumns = []string{
	"table_name", "period", "column_name", "position", "value", "raw_value", "derived",
}

// EnsureReturnTableSchema creates the cell table if it does not exist yet
func (pg *Postgres) EnsureReturnTableSchema(ctx context.Context) error {
	if _, err := pg.db.Exec(ctx, q.Get(q.QueryHelper.Create.ReturnTableCell)); err != nil {
		return fmt.Errorf("error creating %s: %w", returnTableCell, err)
	}
	return nil
}

// ReplaceReturnTable swaps every stored cell of tableName for cells in a single transaction
func (pg *Postgres) ReplaceReturnTable(ctx context.Context, tableName string, cells []*m.ReturnTableCell) (int64, error) {
	if strings.TrimSpace(tableName) == "" {
		return 0, fmt.Errorf("table name is required")
	}

	tx, err := pg.GetTransaction(ctx)
	if err != nil {
		return 0, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op once committed

	if _, err := tx.Exec(ctx, q.Get(q.QueryHelper.Delete.ReturnTableCellsByTableName), pgx.NamedArgs{"table_name": tableName}); err != nil {
		return 0, fmt.Errorf("error deleting existing cells for %s: %w", tableName, err)
	}

	entries := make([][]any, len(cells))
	for i, c := range cells {
		entries[i] = []any{
			tableName, c.Period, c.ColumnName, c.Position, c.Value.Ptr(), c.RawValue.Ptr(), c.Derived,
		}
	}

	ra, err := pg.BulkInsert(ctx, returnTableCell, returnTableCellColumns, entries, tx)
	if err != nil {
		return 0, fmt.Errorf("error inserting cells for %s: %w", tableName, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("error committing cells for %s: %w", tableName, err)
	}

	return ra, nil
}

// GetReturnTable reads back the cells of tableName ordered by period then column position
func (pg *Postgres) GetReturnTable(ctx context.Context, tableName string) ([]*m.ReturnTableCell, error) {
	res, err := Query[m.ReturnTableCell](ctx, pg, q.Get(q.QueryHelper.Select.ReturnTableCellsByTableName), pgx.NamedArgs{"table_name": tableName})
	if err != nil {
		return nil, fmt.Errorf("unable to query cells for table (%s): %w", tableName, err)
	}
	return res, nil
}

func (pg *Postgres) GetReturnTableNames(ctx context.Context) ([]string, error) {
	rows, err := pg.db.Query(ctx, q.Get(q.QueryHelper.Select.ReturnTableNames))
	if err != nil {
		return nil, fmt.Errorf("unable to query table names: %w", err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("error collecting table names: %w", err)
	}
	return names, nil
}
