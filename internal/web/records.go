package web

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/karte/pkg/types"
)

// fetch lists table rows matching filter as concrete entities.
func fetch[T any](store types.Store, table string, filter map[string]any) ([]*T, error) {
	tbl, err := store.GetTable(table)
	if err != nil {
		return nil, err
	}
	rows, err := tbl.Fetch(filter)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		e, ok := row.(*T)
		if !ok {
			return nil, fmt.Errorf("list %s: unexpected %T", table, row)
		}
		out = append(out, e)
	}
	return out, nil
}

// get loads one entity. found is false when the ID does not exist.
func get[T any](store types.Store, table string, id int64) (e *T, found bool, err error) {
	tbl, err := store.GetTable(table)
	if err != nil {
		return nil, false, err
	}
	row, err := tbl.Get(id)
	if errors.Is(err, types.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	e, ok := row.(*T)
	if !ok {
		return nil, false, fmt.Errorf("get %s: unexpected %T", table, row)
	}
	return e, true, nil
}

func insert(store types.Store, table string, entity any) (int64, error) {
	tbl, err := store.GetTable(table)
	if err != nil {
		return 0, err
	}
	return tbl.Insert(entity)
}

func update(store types.Store, table string, id int64, entity any) error {
	tbl, err := store.GetTable(table)
	if err != nil {
		return err
	}
	return tbl.Update(id, entity)
}

// checkProject fails with a field error when id names a case that does not
// exist. A nil id means no case.
func checkProject(store types.Store, id *int64) error {
	if id == nil {
		return nil
	}
	_, found, err := get[types.Project](store, types.TableProjects, *id)
	if err != nil {
		return err
	}
	if !found {
		return fieldError("case %d does not exist", *id)
	}
	return nil
}
