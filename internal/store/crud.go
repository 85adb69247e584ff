package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// crudTable describes one allow-listed table for the dashboard's
// generic CRUD passthrough (SPEC_FULL §4.7): its primary key column
// and the set of columns a PUT is permitted to overwrite. Modeling the
// payload as an opaque json.RawMessage rather than typing each virtual
// table, per spec.md §9's "Dynamic payload shape" note.
type crudTable struct {
	pkColumn string
	columns  []string
}

var crudTables = map[string]crudTable{
	"plant_current_state": {
		pkColumn: "plant_id",
		columns:  []string{"severity", "soil_moisture", "ambient_light_lux", "ambient_humidity_rh", "ambient_temp_c", "metric_severity"},
	},
	"ticker_event": {
		pkColumn: "id",
		columns:  []string{"severity", "message", "payload"},
	},
	"device": {
		pkColumn: "device_uid",
		columns:  []string{"is_active", "firmware_version"},
	},
	"plant": {
		pkColumn: "id",
		columns:  []string{"display_name", "location", "is_active"},
	},
}

// ErrTableNotAllowed is returned for any table name outside the
// dashboard's allow-list.
var ErrTableNotAllowed = fmt.Errorf("store: table not allow-listed for CRUD passthrough")

type CRUD struct {
	pool *Pool
}

func NewCRUD(pool *Pool) *CRUD {
	return &CRUD{pool: pool}
}

// Get returns the row identified by id as a single opaque JSON object,
// or an error if table isn't allow-listed or the row doesn't exist.
func (c *CRUD) Get(ctx context.Context, table, id string) (json.RawMessage, error) {
	t, ok := crudTables[table]
	if !ok {
		return nil, ErrTableNotAllowed
	}

	query := fmt.Sprintf(`SELECT row_to_json(t) FROM %s t WHERE %s = $1`, table, t.pkColumn)
	var raw json.RawMessage
	if err := c.pool.DB.GetContext(ctx, &raw, query, id); err != nil {
		return nil, fmt.Errorf("store: crud get %s: %w", table, err)
	}
	return raw, nil
}

// Put overwrites the allow-listed columns of the row identified by id
// with the values present in payload. Keys outside the table's column
// allow-list are silently ignored.
func (c *CRUD) Put(ctx context.Context, table, id string, payload json.RawMessage) error {
	t, ok := crudTables[table]
	if !ok {
		return ErrTableNotAllowed
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return fmt.Errorf("store: crud put %s: decode payload: %w", table, err)
	}

	setClauses := ""
	args := []interface{}{id}
	for _, col := range t.columns {
		v, present := fields[col]
		if !present {
			continue
		}
		args = append(args, v)
		if setClauses != "" {
			setClauses += ", "
		}
		setClauses += fmt.Sprintf("%s = $%d", col, len(args))
	}
	if setClauses == "" {
		return nil
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $1`, table, setClauses, t.pkColumn)
	if _, err := c.pool.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("store: crud put %s: %w", table, err)
	}
	return nil
}
