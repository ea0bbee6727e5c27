package cellstats

import (
	"fmt"
	"sort"
	"sync"

	"stats-tools/stats"

	"github.com/golang/geo/s2"
	"github.com/sirupsen/logrus"
)

const MaxS2Lvl = 30

type Sample struct {
	Lat   float64
	Lng   float64
	Value float64
}

// CellSummary holds the population statistics of every sample that fell
// inside Cell.
type CellSummary struct {
	Cell     s2.CellID
	Count    int
	Mean     float64
	Variance float64
	Stdev    float64
	Geom     string
}

func (c CellSummary) String() string {
	return fmt.Sprintf("%v;%d;%v;%v;%v;%s", int64(c.Cell), c.Count, c.Mean, c.Variance, c.Stdev, c.Geom)
}

type ConfigOpts struct {
	NumWorkers int
	S2Lvl      int
}

func (o ConfigOpts) validate() error {
	if o.NumWorkers < 1 {
		return fmt.Errorf("numWorkers must be at least 1, got %d", o.NumWorkers)
	}
	if o.S2Lvl < 0 || o.S2Lvl > MaxS2Lvl {
		return fmt.Errorf("s2Lvl must be in [0, %d], got %d", MaxS2Lvl, o.S2Lvl)
	}
	return nil
}

// Summarize buckets samples into S2 cells at opts.S2Lvl and computes the
// mean, variance and standard deviation for each cell. Results are ordered
// by cell ID.
func Summarize(samples []Sample, opts ConfigOpts) ([]CellSummary, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, stats.ErrEmptyInput
	}

	done := make(chan struct{})
	defer close(done)

	sampleCh := genSamples(samples, done)
	cellMap := groupByCell(sampleCh, opts.S2Lvl)

	cells := make(chan s2.CellID)
	go func() {
		defer close(cells)
		for cell := range cellMap {
			select {
			case cells <- cell:
			case <-done:
				return
			}
		}
	}()

	resCh, errCh := summarizeCells(cells, cellMap, opts.NumWorkers)

	summaries := make([]CellSummary, 0, len(cellMap))
	for summary := range resCh {
		summaries = append(summaries, summary)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Cell < summaries[j].Cell })
	return summaries, nil
}

func genSamples(samples []Sample, done <-chan struct{}) <-chan Sample {
	out := make(chan Sample)
	go func() {
		defer close(out)
		for _, sample := range samples {
			select {
			case out <- sample:
			case <-done:
				return
			}
		}
	}()
	return out
}

func groupByCell(sampleCh <-chan Sample, lvl int) map[s2.CellID][]float64 {
	logrus.Debug("Entered groupByCell")
	outMap := make(map[s2.CellID][]float64)
	for sample := range sampleCh {
		cell := CellForLatLng(sample.Lat, sample.Lng, lvl)
		outMap[cell] = append(outMap[cell], sample.Value)
	}
	logrus.Debugf("Exited groupByCell with %d cells", len(outMap))
	return outMap
}

// summarizeCells runs numWorkers goroutines over cells. cellMap is only
// read once groupByCell has returned, so no locking is needed.
func summarizeCells(cells <-chan s2.CellID, cellMap map[s2.CellID][]float64, numWorkers int) (<-chan CellSummary, <-chan error) {
	logrus.Debug("Entered summarizeCells")
	resCh := make(chan CellSummary, len(cellMap))
	errCh := make(chan error, 1)

	var wg sync.WaitGroup
	var once sync.Once
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for cell := range cells {
				summary, err := summarizeCell(cell, cellMap[cell])
				if err != nil {
					once.Do(func() { errCh <- err })
					continue
				}
				resCh <- summary
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resCh)
		close(errCh)
	}()
	return resCh, errCh
}

func summarizeCell(cell s2.CellID, values []float64) (CellSummary, error) {
	summary, err := stats.Describe(values...)
	if err != nil {
		return CellSummary{}, fmt.Errorf("cell %v: %w", cell, err)
	}
	return CellSummary{
		Cell:     cell,
		Count:    summary.Count,
		Mean:     summary.Average,
		Variance: summary.Variance,
		Stdev:    summary.Stdev,
		Geom:     CellToWKT(cell),
	}, nil
}

func CellForLatLng(lat, lng float64, lvl int) s2.CellID {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lng)).Parent(lvl)
}
