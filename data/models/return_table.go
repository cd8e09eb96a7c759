package models

import (
	"github.com/guregu/null/v6"
)

// ReturnTableCell is one cell of an augmented return table stored in long format.
// numeric columns (asset returns and rolling returns) fill Value, anything else fills RawValue
type ReturnTableCell struct {
	TableName  string      `db:"table_name"`
	Period     int32       `db:"period"`
	ColumnName string      `db:"column_name"`
	Position   int32       `db:"position"`
	Value      null.Float  `db:"value"`
	RawValue   null.String `db:"raw_value"`
	Derived    bool        `db:"derived"`
}
