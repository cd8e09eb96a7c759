package queries

import (
	"embed"
	"fmt"
)

//go:embed create/*.sql delete/*.sql select/*.sql
var Files embed.FS

type CreateQueries struct {
	ReturnTableCell string
}

type DeleteQueries struct {
	ReturnTableCellsByTableName string
}

type SelectQueries struct {
	ReturnTableCellsByTableName string
	ReturnTableNames            string
}

type QueryHelperStruct struct {
	Create CreateQueries
	Delete DeleteQueries
	Select SelectQueries
}

var QueryHelper = QueryHelperStruct{
	Create: CreateQueries{
		ReturnTableCell: "create/return_table_cell.sql",
	},
	Delete: DeleteQueries{
		ReturnTableCellsByTableName: "delete/return_table_cells_by_table_name.sql",
	},
	Select: SelectQueries{
		ReturnTableCellsByTableName: "select/return_table_cells_by_table_name.sql",
		ReturnTableNames:            "select/return_table_names.sql",
	},
}

func Get(path string) string {
	content, err := Files.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("error reading query file: %w", err))
	}

	return string(content)
}
