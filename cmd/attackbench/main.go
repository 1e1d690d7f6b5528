package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ctfkit/rsacrack/pkg/rsacrack"
)

// point is one parameter setting of a sweep, aggregated over -runs trials.
type point struct {
	Param     int     `json:"param"`
	Trials    int     `json:"trials"`
	Successes int     `json:"successes"`
	MeanMS    float64 `json:"mean_ms"`
}

func (p point) rate() float64 { return float64(p.Successes) / float64(p.Trials) }

// sweep runs one attack across generated keys at increasing parameter values.
type sweep struct {
	Name   string  `json:"name"`
	Points []point `json:"points"`
}

func main() {
	runs := flag.Int("runs", 10, "trials per parameter point")
	modBits := flag.Int("bits", 512, "modulus size for the small-d sweeps")
	timeout := flag.Duration("timeout", 2*time.Minute, "per-trial timeout")
	outDir := flag.String("out", "bench_reports", "output directory for reports")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("mkdir: %v", err)
	}

	sweeps := []sweep{
		smallDSweep("wiener", rsacrack.NewWiener(), *modBits, *runs, *timeout, 48, 136, 8),
		smallDSweep("bonehdurfee", rsacrack.NewBonehDurfee(), *modBits, *runs, *timeout, 48, 136, 8),
		fermatSweep(*runs, *timeout),
	}

	ts := time.Now().Format("20060102_150405")
	jsonPath := filepath.Join(*outDir, fmt.Sprintf("attack_sweeps_%s.json", ts))
	if err := saveJSON(jsonPath, sweeps); err != nil {
		log.Printf("warn: save stats: %v", err)
	}

	page := components.NewPage()
	page.AddCharts(
		successChart(fmt.Sprintf("Small-d success rate (%d-bit modulus)", *modBits), sweeps[0], sweeps[1]),
		timingChart(fmt.Sprintf("Small-d mean time (%d-bit modulus)", *modBits), sweeps[0], sweeps[1]),
		fermatChart(sweeps[2]),
	)

	htmlPath := filepath.Join(*outDir, fmt.Sprintf("attack_sweeps_%s.html", ts))
	f, err := os.Create(htmlPath)
	if err != nil {
		log.Fatalf("create html: %v", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Fatalf("render html: %v", err)
	}
	fmt.Println("Chart page:", htmlPath)
	fmt.Println("Stats JSON:", jsonPath)
}

// smallDSweep measures one attack against keys with secret exponents of
// dBits = lo..hi bits. The continued-fraction attack dies out around
// bits/4; the lattice attack reaches further before it too fails.
func smallDSweep(name string, attack rsacrack.Attack, modBits, runs int, timeout time.Duration, lo, hi, step int) sweep {
	s := sweep{Name: name}
	for dBits := lo; dBits <= hi; dBits += step {
		p := point{Param: dBits, Trials: runs}
		var total time.Duration
		for i := 0; i < runs; i++ {
			log.Printf("[bench] %s d=%d bits, trial %d/%d", name, dBits, i+1, runs)
			priv, err := rsacrack.GenerateSmallD(rand.Reader, modBits, dBits)
			if err != nil {
				log.Fatalf("generate: %v", err)
			}
			ok, elapsed := attempt(attack, priv.Public(), timeout)
			total += elapsed
			if ok {
				p.Successes++
			}
		}
		p.MeanMS = float64(total.Milliseconds()) / float64(runs)
		s.Points = append(s.Points, p)
	}
	return s
}

// fermatSweep measures factoring time for close-prime moduli of growing size.
func fermatSweep(runs int, timeout time.Duration) sweep {
	s := sweep{Name: "fermat"}
	attack := rsacrack.NewFermat()
	for _, bits := range []int{256, 384, 512, 768, 1024} {
		p := point{Param: bits, Trials: runs}
		var total time.Duration
		for i := 0; i < runs; i++ {
			log.Printf("[bench] fermat n=%d bits, trial %d/%d", bits, i+1, runs)
			priv, err := rsacrack.GenerateCloseFactors(rand.Reader, bits)
			if err != nil {
				log.Fatalf("generate: %v", err)
			}
			ok, elapsed := attempt(attack, priv.Public(), timeout)
			total += elapsed
			if ok {
				p.Successes++
			}
		}
		p.MeanMS = float64(total.Milliseconds()) / float64(runs)
		s.Points = append(s.Points, p)
	}
	return s
}

func attempt(attack rsacrack.Attack, key *rsacrack.PublicKey, timeout time.Duration) (bool, time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	start := time.Now()
	res, err := attack.Attempt(ctx, &rsacrack.Target{Keys: []*rsacrack.PublicKey{key}})
	elapsed := time.Since(start)
	if err != nil {
		log.Printf("warn: %s: %v", attack.Name(), err)
		return false, elapsed
	}
	return res != nil && !res.Empty(), elapsed
}

// ------------------------- plotting: go-echarts HTML -------------------------

func successChart(title string, sweeps ...sweep) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "fraction of trials broken, by secret exponent size"}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(xLabels(sweeps[0]))
	for _, s := range sweeps {
		items := make([]opts.LineData, len(s.Points))
		for i, p := range s.Points {
			items[i] = opts.LineData{Value: p.rate()}
		}
		line.AddSeries(s.Name, items)
	}
	return line
}

func timingChart(title string, sweeps ...sweep) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "mean milliseconds per trial, by secret exponent size"}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(xLabels(sweeps[0]))
	for _, s := range sweeps {
		items := make([]opts.LineData, len(s.Points))
		for i, p := range s.Points {
			items[i] = opts.LineData{Value: p.MeanMS}
		}
		line.AddSeries(s.Name, items)
	}
	return line
}

func fermatChart(s sweep) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Close-prime factoring time", Subtitle: "mean milliseconds per trial, by modulus size"}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "fermat", Width: "1200px", Height: "600px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	items := make([]opts.BarData, len(s.Points))
	for i, p := range s.Points {
		items[i] = opts.BarData{Value: p.MeanMS}
	}
	bar.SetXAxis(xLabels(s)).
		AddSeries("mean ms", items).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}))
	return bar
}

func xLabels(s sweep) []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = fmt.Sprintf("%d", p.Param)
	}
	return out
}

func saveJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
