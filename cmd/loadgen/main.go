package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/atharv3903/freightpath/internal/cache"
	"github.com/atharv3903/freightpath/internal/model"
	"github.com/atharv3903/freightpath/internal/netgen"
)

type Result struct {
	Clients    int
	AvgLatency float64
	P50        float64
	P95        float64
	P99        float64
	Throughput float64
	Hits       int64
	Errors     int64
	Total      int64
}

func main() {
	var (
		server    = flag.String("server", "http://127.0.0.1:8080", "server base URL")
		hubs      = flag.Int("hubs", 300, "hubs in the synthetic network")
		degree    = flag.Int("degree", 4, "outgoing edges per hub")
		perReq    = flag.Int("shipments", 25, "shipments per request")
		distinct  = flag.Int("distinct", 50, "distinct request bodies (fewer means more cache hits)")
		clientsCS = flag.String("clients", "1,2,4,8,16", "comma separated client counts")
		dur       = flag.Duration("duration", 10*time.Second, "duration per client count")
		csvPath   = flag.String("csv", "", "write results as CSV to this file")
	)
	flag.Parse()

	clientCounts, err := parseCounts(*clientsCS)
	if err != nil {
		log.Fatalf("bad -clients: %v", err)
	}

	edges := netgen.Network(netgen.Options{Hubs: *hubs, Degree: *degree, Seed: 1})
	nodes := netgen.Nodes(edges)
	bodies := make([][]byte, *distinct)
	for i := range bodies {
		in := model.Input{Edges: edges, Shipments: netgen.Shipments(nodes, *perReq, int64(i))}
		if bodies[i], err = json.Marshal(in); err != nil {
			log.Fatal(err)
		}
	}
	log.Printf("Prepared %d request bodies over %d edges", len(bodies), len(edges))

	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        500,
			MaxIdleConnsPerHost: 500,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: 10 * time.Second,
	}

	// clear cache before test to avoid cumulative stats
	if resp, err := client.Post(*server+"/debug/clear_cache", "text/plain", nil); err != nil {
		log.Fatalf("failed to clear cache: %v", err)
	} else {
		resp.Body.Close()
	}

	var results []Result
	for _, n := range clientCounts {
		fmt.Printf("\n== Running test with %d clients ==\n", n)
		res := runClosedLoop(client, *server, bodies, n, *dur)
		results = append(results, res)
		fmt.Printf("RPS: %.2f | Avg %.2fms | P99 %.2fms | Hits=%d | Errors=%d/%d\n",
			res.Throughput, res.AvgLatency, res.P99, res.Hits, res.Errors, res.Total)
	}

	var st cache.Stats
	if resp, err := client.Get(*server + "/debug/cache_stats"); err == nil {
		json.NewDecoder(resp.Body).Decode(&st)
		resp.Body.Close()
	}

	fmt.Println("\n========== LOADGEN SUMMARY ==========")
	writeCSV(os.Stdout, results)
	if st.Gets > 0 {
		fmt.Printf("ResultCache Hit Rate: %.1f%% (gets=%d, hits=%d, puts=%d, evictions=%d)\n",
			float64(st.Hits)/float64(st.Gets)*100, st.Gets, st.Hits, st.Puts, st.Evictions)
	}
	fmt.Println("=====================================")

	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		writeCSV(f, results)
		fmt.Println("Saved", *csvPath)
	}
}

func parseCounts(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		if n < 1 {
			return nil, fmt.Errorf("client count must be >= 1, got %d", n)
		}
		out = append(out, n)
	}
	return out, nil
}

func writeCSV(w io.Writer, results []Result) {
	fmt.Fprintln(w, "clients,avg_ms,p50,p95,p99,throughput,hits,errors,total")
	for _, r := range results {
		fmt.Fprintf(w, "%d,%.2f,%.2f,%.2f,%.2f,%.2f,%d,%d,%d\n",
			r.Clients, r.AvgLatency, r.P50, r.P95, r.P99, r.Throughput, r.Hits, r.Errors, r.Total)
	}
}

// --------------------------------------------
// CLOSED LOOP TEST FOR A FIXED CLIENT COUNT
// --------------------------------------------
func runClosedLoop(client *http.Client, server string, bodies [][]byte, clients int, dur time.Duration) Result {
	ctx, cancel := context.WithTimeout(context.Background(), dur)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex

	var latencies []time.Duration
	var total, hits, errs int64

	for w := 0; w < clients; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))

			for ctx.Err() == nil {
				body := bodies[rng.Intn(len(bodies))]

				start := time.Now()
				resp, err := client.Post(server+"/v1/routes", "application/json", bytes.NewReader(body))
				lat := time.Since(start)

				mu.Lock()
				total++
				if err != nil || resp.StatusCode != http.StatusOK {
					errs++
				} else {
					latencies = append(latencies, lat)
					if resp.Header.Get("X-Cache") == "hit" {
						hits++
					}
				}
				mu.Unlock()

				if err == nil {
					io.Copy(io.Discard, resp.Body)
					resp.Body.Close()
				}
			}
		}(time.Now().UnixNano() + int64(w))
	}

	wg.Wait()

	p50, p95, p99 := computePercentiles(latencies)
	return Result{
		Clients:    clients,
		AvgLatency: computeAvg(latencies),
		P50:        p50,
		P95:        p95,
		P99:        p99,
		Throughput: float64(total) / dur.Seconds(),
		Hits:       hits,
		Errors:     errs,
		Total:      total,
	}
}

func computeAvg(l []time.Duration) float64 {
	if len(l) == 0 {
		return 0
	}
	var sum time.Duration
	for _, x := range l {
		sum += x
	}
	return ms(sum) / float64(len(l))
}

func computePercentiles(l []time.Duration) (p50, p95, p99 float64) {
	if len(l) == 0 {
		return 0, 0, 0
	}
	tmp := make([]time.Duration, len(l))
	copy(tmp, l)
	sort.Slice(tmp, func(i, j int) bool { return tmp[i] < tmp[j] })

	idx := func(p float64) int {
		i := int(float64(len(tmp)) * p)
		if i >= len(tmp) {
			i = len(tmp) - 1
		}
		return i
	}

	return ms(tmp[idx(0.50)]), ms(tmp[idx(0.95)]), ms(tmp[idx(0.99)])
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
