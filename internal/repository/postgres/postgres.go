package postgres

import (
	"database/sql"
	"fmt"
)

// phaseOrderClause sorts catalog phases in pipeline order. Applied anywhere
// statuses are listed so the UI presentation stays stable.
const phaseOrderClause = `
	CASE phase
		WHEN 'Creation' THEN 0
		WHEN 'Production' THEN 1
		WHEN 'Logistics' THEN 2
		WHEN 'Terminal' THEN 3
		ELSE 4
	END`

// requireRow converts a zero-rows-affected update into sql.ErrNoRows so
// services can map it to a not-found result.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no rows affected: %w", sql.ErrNoRows)
	}
	return nil
}
