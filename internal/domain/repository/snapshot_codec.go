package repository

import (
	"encoding/json"
	"fmt"
)

// EncodeCollections serializa cada colección del snapshot por separado (JSON array u objeto).
func EncodeCollections(snap *Snapshot) (map[string][]byte, error) {
	values := map[string]any{
		CollectionProducts:      nonNil(snap.Products),
		CollectionUnits:         snap.Units,
		CollectionLedger:        nonNil(snap.Ledger),
		CollectionMovements:     nonNil(snap.Movements),
		CollectionOrders:        nonNil(snap.Orders),
		CollectionPendingStocks: nonNil(snap.PendingStocks),
	}
	if snap.Units == nil {
		values[CollectionUnits] = map[string]any{}
	}
	out := make(map[string][]byte, len(values))
	for _, name := range Collections {
		raw, err := json.Marshal(values[name])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		out[name] = raw
	}
	return out, nil
}

// DecodeCollection carga en snap la colección name. Colecciones desconocidas se ignoran.
func DecodeCollection(snap *Snapshot, name string, raw []byte) error {
	var target any
	switch name {
	case CollectionProducts:
		target = &snap.Products
	case CollectionUnits:
		target = &snap.Units
	case CollectionLedger:
		target = &snap.Ledger
	case CollectionMovements:
		target = &snap.Movements
	case CollectionOrders:
		target = &snap.Orders
	case CollectionPendingStocks:
		target = &snap.PendingStocks
	default:
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
