package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/atharv3903/freightpath/internal/algo"
	"github.com/atharv3903/freightpath/internal/db"
	"github.com/atharv3903/freightpath/internal/netgen"
)

// seed writes a synthetic network and shipment backlog into MySQL.
func main() {
	var (
		dsn       = flag.String("dsn", os.Getenv("DB_DSN"), "MySQL DSN")
		hubs      = flag.Int("hubs", 500, "number of hubs")
		degree    = flag.Int("degree", 4, "outgoing edges per hub")
		shipments = flag.Int("shipments", 200, "shipments to create")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "random seed")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatalf("usage: seed -dsn <mysql_dsn> [-hubs N] [-degree N] [-shipments N]")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, *dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := db.Migrate(conn); err != nil {
		log.Fatal(err)
	}
	store := db.Store{DB: conn}

	edges := netgen.Network(netgen.Options{Hubs: *hubs, Degree: *degree, Seed: *seed})
	start := time.Now()
	for i, e := range edges {
		w, err := algo.ParseEdge(e)
		if err != nil {
			log.Fatalf("edge #%d: %v", i, err)
		}
		if err := store.UpsertEdge(ctx, e.From, e.To, w); err != nil {
			log.Fatalf("edge #%d: %v", i, err)
		}
	}
	log.Printf("Seeded %d edges across %d hubs in %v", len(edges), *hubs, time.Since(start))

	start = time.Now()
	for _, sh := range netgen.Shipments(netgen.Nodes(edges), *shipments, *seed+1) {
		if err := store.InsertShipment(ctx, sh); err != nil {
			log.Fatalf("shipment %s: %v", sh.ShipmentID, err)
		}
	}
	log.Printf("Seeded %d shipments in %v", *shipments, time.Since(start))
}
