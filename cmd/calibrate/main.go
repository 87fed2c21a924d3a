package main

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/BTBurke/abtest/pkg/rng"
	"github.com/BTBurke/abtest/pkg/stat"
)

// ControlSize is large so the control summary is effectively the population
const ControlSize int = 1000000

var wg sync.WaitGroup

type results struct {
	mu  sync.Mutex
	val map[float64][2]float64
}

func (r *results) record(d float64, empirical float64, analytic float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.val[d] = [2]float64{empirical, analytic}
}

func newResults() *results {
	return &results{
		val:  make(map[float64][2]float64),
	}
}

func main() {
	pf := pflag.NewFlagSet("calibrate", pflag.ExitOnError)
	size := pf.IntP("size", "n", 25, "Test group size")
	loops := pf.Int("loops", 10000, "Simulated experiments per effect size")
	maxD := pf.Float64("max-d", 1.0, "Largest effect size to simulate")
	step := pf.Float64("step", 0.1, "Effect size step")
	out := pf.StringP("out", "o", "power.txt", "Output file")
	pf.Parse(os.Args[1:])

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Printf("could not create logger: %s\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	res := newResults()
	start := time.Now()
	for i := 0; float64(i)*(*step) <= *maxD+1e-9; i++ {
		d := float64(i) * (*step)
		wg.Add(1)
		log.Info("start", zap.Float64("d", d), zap.Int("n", *size))
		go rejectionRate(log, res, d, *size, *loops, int64(i))
	}
	wg.Wait()
	log.Info("done", zap.Duration("elapsed", time.Since(start)))

	ds := make([]float64, 0, len(res.val))
	for d := range res.val {
		ds = append(ds, d)
	}
	sort.Float64s(ds)

	var b bytes.Buffer
	b.WriteString("d empirical analytic\n")
	for _, d := range ds {
		v := res.val[d]
		b.WriteString(fmt.Sprintf("%.2f %.5f %.5f\n", d, v[0], v[1]))
	}
	if err := ioutil.WriteFile(*out, b.Bytes(), 0644); err != nil {
		log.Fatal("could not write results", zap.Error(err))
	}
}

// rejectionRate simulates test groups shifted by d control standard deviations and counts how often the null
// hypothesis is rejected
func rejectionRate(log *zap.Logger, results *results, d float64, n int, loops int, seed int64) {
	defer wg.Done()
	control := stat.NewGroupSummary(ControlSize, 0, 1)
	gen := rng.NewNormalRNG(d, 1, rng.WithSeed(seed))

	rejected := 0
	for i := 0; i < loops; i++ {
		test, err := stat.Summarize(gen.Sample(n))
		if err != nil {
			log.Fatal("unexpected error summarizing sample", zap.Error(err))
		}
		if stat.Analyze(control, test).Significant() {
			rejected++
		}
	}
	empirical := float64(rejected) / float64(loops)
	analytic := stat.Power(d, n)
	log.Info("result",
		zap.Float64("d", d),
		zap.Float64("empirical", empirical),
		zap.Float64("analytic", analytic),
		zap.Int("rejected", rejected),
	)
	results.record(d, empirical, analytic)
}
