package db

import (
	"context"
	"database/sql"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/atharv3903/freightpath/internal/model"
)

// Store reads the network and the shipment backlog from MySQL. Every call
// returns a fresh snapshot; nothing is cached between invocations.
type Store struct {
	DB *sql.DB
}

// Edges returns every open edge in insertion order.
func (s Store) Edges(ctx context.Context) ([]model.RawEdge, error) {
	rows, err := s.DB.QueryContext(ctx, `
        SELECT src_node, dst_node, distance_km, time_hours, cost_eur
        FROM edges
        WHERE closed = FALSE
        ORDER BY edge_id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	edges := make([]model.RawEdge, 0, 64)

	for rows.Next() {
		var src, dst string
		var dist, hours, cost float64

		if err := rows.Scan(&src, &dst, &dist, &hours, &cost); err != nil {
			return nil, err
		}

		edges = append(edges, model.RawEdge{
			From:       src,
			To:         dst,
			DistanceKm: dist,
			TimeHours:  hours,
			CostEUR:    cost,
		})
	}

	return edges, rows.Err()
}

func (s Store) Shipments(ctx context.Context) ([]model.Shipment, error) {
	rows, err := s.DB.QueryContext(ctx, `
        SELECT shipment_id, origin, destination, priority, batches
        FROM shipments
        ORDER BY seq
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Shipment, 0, 16)

	for rows.Next() {
		var sh model.Shipment
		var priority sql.NullString
		var batches []byte

		if err := rows.Scan(&sh.ShipmentID, &sh.Origin, &sh.Destination, &priority, &batches); err != nil {
			return nil, err
		}
		if priority.Valid {
			p := priority.String
			sh.Priority = &p
		}
		if sh.Batches, err = decodeBatches(batches); err != nil {
			return nil, fmt.Errorf("shipment %s: %w", sh.ShipmentID, err)
		}

		out = append(out, sh)
	}

	return out, rows.Err()
}

func decodeBatches(b []byte) ([]any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var v []any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode batches: %w", err)
	}
	return v, nil
}

// UpsertEdge creates or replaces the from→to edge and reopens it.
func (s Store) UpsertEdge(ctx context.Context, from, to string, w model.Weights) error {
	_, err := s.DB.ExecContext(ctx, `
        INSERT INTO edges (src_node, dst_node, distance_km, time_hours, cost_eur, closed)
        VALUES (?, ?, ?, ?, ?, FALSE)
        ON DUPLICATE KEY UPDATE
            distance_km = VALUES(distance_km),
            time_hours  = VALUES(time_hours),
            cost_eur    = VALUES(cost_eur),
            closed      = FALSE
    `, from, to, w.DistanceKm, w.TimeHours, w.CostEUR)
	return err
}

// UpdateEdgeClosed hides or restores an edge without deleting it. It
// reports whether the edge exists.
func (s Store) UpdateEdgeClosed(ctx context.Context, from, to string, closed bool) (bool, error) {
	// RowsAffected is 0 for a no-op update on MySQL, so existence is checked separately.
	if _, err := s.DB.ExecContext(ctx, `UPDATE edges SET closed=? WHERE src_node=? AND dst_node=?`, closed, from, to); err != nil {
		return false, err
	}
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM edges WHERE src_node=? AND dst_node=?`, from, to).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s Store) InsertShipment(ctx context.Context, sh model.Shipment) error {
	var batches []byte
	if sh.Batches != nil {
		b, err := json.Marshal(sh.Batches)
		if err != nil {
			return fmt.Errorf("encode batches: %w", err)
		}
		batches = b
	}
	_, err := s.DB.ExecContext(ctx, `
        INSERT INTO shipments (shipment_id, origin, destination, priority, batches)
        VALUES (?, ?, ?, ?, ?)
    `, sh.ShipmentID, sh.Origin, sh.Destination, sh.Priority, batches)
	return err
}
