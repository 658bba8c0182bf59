package inventory

import (
	"sort"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// MovementGroup traslados agrupados para presentación; el almacenamiento conserva un registro por unidad.
type MovementGroup struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Minute      time.Time       `json:"minute"`
	From        entity.Location `json:"from_location"`
	To          entity.Location `json:"to_location"`
	EmployeeID  string          `json:"employee_id,omitempty"`
	Actor       string          `json:"actor"`
	UnitIDs     []string        `json:"unit_ids"`
	Serials     []string        `json:"serial_numbers"`
	Count       int             `json:"count"`
}

type movementKey struct {
	productID  string
	minute     int64
	from, to   entity.Location
	employeeID string
}

// GroupMovements agrupa por (producto, minuto, origen, destino, empleado), del grupo más reciente al más antiguo.
func GroupMovements(movs []entity.StockMovement) []MovementGroup {
	index := make(map[movementKey]int)
	groups := make([]MovementGroup, 0)
	for _, m := range movs {
		minute := m.Timestamp.UTC().Truncate(time.Minute)
		k := movementKey{m.ProductID, minute.Unix(), m.FromLocation, m.ToLocation, m.EmployeeID}
		gi, ok := index[k]
		if !ok {
			gi = len(groups)
			index[k] = gi
			groups = append(groups, MovementGroup{
				ProductID:   m.ProductID,
				ProductName: m.ProductName,
				Minute:      minute,
				From:        m.FromLocation,
				To:          m.ToLocation,
				EmployeeID:  m.EmployeeID,
				Actor:       m.Actor,
			})
		}
		g := &groups[gi]
		g.UnitIDs = append(g.UnitIDs, m.UnitID)
		if m.SerialNumber != "" {
			g.Serials = append(g.Serials, m.SerialNumber)
		}
		g.Count++
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Minute.After(groups[j].Minute) })
	return groups
}

// MovementsOf devuelve los traslados del producto (todos si productID es vacío), del más reciente al más antiguo.
func (s *State) MovementsOf(productID string) []entity.StockMovement {
	out := make([]entity.StockMovement, 0)
	for i := len(s.Movements) - 1; i >= 0; i-- {
		if productID == "" || s.Movements[i].ProductID == productID {
			out = append(out, s.Movements[i])
		}
	}
	return out
}
