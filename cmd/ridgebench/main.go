// Command ridgebench sweeps engine.Engine's insert/select latency across a
// range of LRU cache capacities, compares it against a Pebble-backed
// equivalent, and writes a CSV of per-run average latencies plus a line
// chart of select latency (the Pebble run is plotted at capacity 0).
//
// Grounded on the teacher's main.go/benchmark.go/workload.go trio (CSV
// schema, runtime.MemStats sampling via GetDetailedMem, the runSuite sweep
// shape) and dbms/index/lsm/lsm.go (wrapping Pebble behind a minimal
// key/value interface for the comparison arm). The teacher's own
// Graphviz/dot-shellout chart in dbms/index/shared/tree.go's
// ExportDOT/Print is replaced here by gonum.org/v1/plot, already present
// (unused beyond its go.mod require line) in the teacher's dependency
// tree.
package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/cockroachdb/pebble"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"ridgedb/catalog"
	"ridgedb/engine"
	"ridgedb/keykind"
)

const rows = 20000

var cacheSizes = []int{4, 16, 64, 256}

type sample struct {
	structure string
	config    int
	insertNs  int64
	selectNs  int64
	allocMB   uint64
}

func main() {
	var samples []sample

	for _, c := range cacheSizes {
		s, err := benchRidgedb(c)
		if err != nil {
			log.Fatalf("ridgebench: ridgedb sweep at cache %d: %v", c, err)
		}
		samples = append(samples, s)
		fmt.Printf("ridgedb  cache=%-4d insert=%8dns select=%8dns alloc=%dMB\n", c, s.insertNs, s.selectNs, s.allocMB)
	}

	pebbleSample, err := benchPebble()
	if err != nil {
		log.Fatalf("ridgebench: pebble comparison: %v", err)
	}
	fmt.Printf("pebble   insert=%8dns select=%8dns alloc=%dMB\n", pebbleSample.insertNs, pebbleSample.selectNs, pebbleSample.allocMB)
	samples = append(samples, pebbleSample)

	if err := writeCSV("ridgebench_results.csv", samples); err != nil {
		log.Fatalf("ridgebench: write csv: %v", err)
	}
	if err := writeChart("ridgebench_latency.png", samples); err != nil {
		log.Fatalf("ridgebench: write chart: %v", err)
	}
	fmt.Println("ridgebench: wrote ridgebench_results.csv and ridgebench_latency.png")
}

func benchRidgedb(cacheCapacity int) (sample, error) {
	dir, err := os.MkdirTemp("", "ridgebench-")
	if err != nil {
		return sample{}, err
	}
	defer os.RemoveAll(dir)

	eng, err := engine.Open(dir, engine.Options{CacheCapacity: cacheCapacity})
	if err != nil {
		return sample{}, err
	}
	columns := []catalog.Column{{Name: "id", Kind: keykind.I64, PrimaryKey: true}}
	if err := eng.CreateTable("bench", columns); err != nil {
		return sample{}, err
	}

	start := time.Now()
	for i := int64(0); i < rows; i++ {
		row, err := eng.CreateRow("bench", []keykind.Value{keykind.NewI64(i)})
		if err != nil {
			return sample{}, err
		}
		if err := eng.Insert("bench", keykind.NewI64(i), row); err != nil {
			return sample{}, err
		}
	}
	insertNs := time.Since(start).Nanoseconds() / rows

	start = time.Now()
	for i := int64(0); i < rows; i++ {
		if _, _, err := eng.Select("bench", keykind.NewI64(i)); err != nil {
			return sample{}, err
		}
	}
	selectNs := time.Since(start).Nanoseconds() / rows

	return sample{structure: "ridgedb", config: cacheCapacity, insertNs: insertNs, selectNs: selectNs, allocMB: currentAllocMB()}, nil
}

// benchPebble runs the same insert/select sweep against a Pebble instance,
// giving ridgedb's numbers an external reference point.
func benchPebble() (sample, error) {
	dir, err := os.MkdirTemp("", "ridgebench-pebble-")
	if err != nil {
		return sample{}, err
	}
	defer os.RemoveAll(dir)

	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return sample{}, fmt.Errorf("ridgebench: pebble open: %w", err)
	}
	defer db.Close()

	start := time.Now()
	for i := int64(0); i < rows; i++ {
		if err := db.Set(encodeKey(i), []byte{1}, pebble.NoSync); err != nil {
			return sample{}, err
		}
	}
	insertNs := time.Since(start).Nanoseconds() / rows

	start = time.Now()
	for i := int64(0); i < rows; i++ {
		val, closer, err := db.Get(encodeKey(i))
		if err != nil {
			return sample{}, fmt.Errorf("ridgebench: pebble get: %w", err)
		}
		_ = val
		closer.Close()
	}
	selectNs := time.Since(start).Nanoseconds() / rows

	return sample{structure: "pebble", config: 0, insertNs: insertNs, selectNs: selectNs, allocMB: currentAllocMB()}, nil
}

func encodeKey(k int64) []byte {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(k >> (8 * (7 - i)))
	}
	return buf
}

func currentAllocMB() uint64 {
	runtime.GC()
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc / 1024 / 1024
}

func writeCSV(path string, samples []sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"Structure", "Config", "InsertNs", "SelectNs", "AllocMB"}); err != nil {
		return err
	}
	for _, s := range samples {
		if err := w.Write([]string{
			s.structure,
			fmt.Sprintf("%d", s.config),
			fmt.Sprintf("%d", s.insertNs),
			fmt.Sprintf("%d", s.selectNs),
			fmt.Sprintf("%d", s.allocMB),
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeChart(path string, samples []sample) error {
	p := plot.New()
	p.Title.Text = "ridgedb select latency vs. cache capacity"
	p.Add(plotter.NewGrid())
	p.X.Label.Text = "cache capacity (0 = pebble)"
	p.Y.Label.Text = "select latency (ns/op)"

	pts := make(plotter.XYs, 0, len(samples))
	for _, s := range samples {
		pts = append(pts, plotter.XY{X: float64(s.config), Y: float64(s.selectNs)})
	}

	if err := plotutil.AddLinePoints(p, "select latency", pts); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
