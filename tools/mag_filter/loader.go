package mag_filter

import (
	"fmt"
	"os"

	"gopkg.in/cheggaaa/pb.v1"

	"mag_buddy_go/session"
)

// LoadResult pairs a requested MAG name with its loaded record or the
// error that prevented loading it.
type LoadResult struct {
	Name string
	Mag  *session.Mag
	Err  error
}

// LoadMags assembles full MAG records in parallel, preserving input
// order in the result. Failures are collected per name, not fatal, so
// one bad FASTA cannot sink a 500-MAG selection run.
func LoadMags(sesh *session.SessionManager, names []string, workers int, progress bool) []LoadResult {
	results := make([]LoadResult, len(names))
	if len(names) == 0 {
		return results
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(names) {
		workers = len(names)
	}

	type job struct {
		i    int
		name string
	}
	jobs := make(chan job)
	done := make(chan bool)

	var bar *pb.ProgressBar
	if progress {
		bar = pb.New(len(names))
		bar.Output = os.Stderr
		bar.Start()
	}

	for w := 0; w < workers; w++ {
		go func() {
			for j := range jobs {
				mag, err := sesh.GetMag(j.name)
				results[j.i] = LoadResult{Name: j.name, Mag: mag, Err: err}
				if progress {
					bar.Increment()
				}
			}
			done <- true
		}()
	}

	for i, name := range names {
		jobs <- job{i: i, name: name}
	}
	close(jobs)
	for w := 0; w < workers; w++ {
		<-done
	}
	if progress {
		bar.Finish()
	}
	return results
}

// DepthVerdict says how one MAG relates to a coverage cutoff.
type DepthVerdict struct {
	AboveIndividual bool // own-sample coverage meets the cutoff
	AboveTotal      bool // all-samples coverage meets the cutoff
}

// CheckMagDepth evaluates both coverage aggregates against the cutoff.
// When only one aggregate is computable its verdict still counts; the
// error comes back only when neither can be computed.
func CheckMagDepth(mag *session.Mag, cutoff float64) (DepthVerdict, error) {
	var v DepthVerdict

	ind, indErr := mag.AverageCoveragePerSample("")
	if indErr == nil {
		v.AboveIndividual = ind >= cutoff
	}
	total, totalErr := mag.AverageCoverageTotal()
	if totalErr == nil {
		v.AboveTotal = total >= cutoff
	}

	if indErr != nil && totalErr != nil {
		return v, fmt.Errorf("no computable coverage for %s: %v", mag.Name, totalErr)
	}
	return v, nil
}
