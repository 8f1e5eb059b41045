// Copyright © NGRSoftlab 2020-2025

package ftppush

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ngrsoftlab/ftppush/utils"
)

// FileUploader uploads a single file
type FileUploader interface {
	Upload(ctx context.Context, req Request) error
}

// Result is the outcome for one configured source file
type Result struct {
	Source   string        // expanded local path
	Err      error         // nil on success
	Duration time.Duration // time spent on the file
}

// Report collects the results of one Driver run, in configured order
type Report struct {
	RunID   string
	Results []Result
}

// Failed returns the number of files that did not upload
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Err returns the first per-file error, or nil when every file went through
func (r *Report) Err() error {
	for _, res := range r.Results {
		if res.Err != nil {
			return fmt.Errorf("%d of %d files failed, first %q: %w",
				r.Failed(), len(r.Results), res.Source, res.Err)
		}
	}
	return nil
}

// Driver pushes a list of files one after another
type Driver struct {
	uploader FileUploader
	log      logrus.FieldLogger
}

// NewDriver creates a Driver. log may be nil
func NewDriver(uploader FileUploader, log logrus.FieldLogger) *Driver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Driver{uploader: uploader, log: log}
}

// Run uploads every request in order. A failed file never stops the ones after it;
// a source that does not exist is recorded as ErrSourceFileNotFound without
// touching the network.
func (d *Driver) Run(ctx context.Context, reqs []Request) *Report {
	report := &Report{RunID: uuid.NewString(), Results: make([]Result, 0, len(reqs))}
	log := d.log.WithField("run_id", report.RunID)
	log.Infof("pushing %d file(s)", len(reqs))

	for _, req := range reqs {
		started := time.Now()
		source := utils.ExpandPath(req.SourcePath, req.SourceBasePath)
		fileLog := log.WithField("source", source)

		var err error
		if !regularFileExists(source) {
			err = utils.NewError(utils.ErrSourceFileNotFound, "push", fmt.Sprintf("%q", source), nil)
			fileLog.Error(err)
		} else {
			req.SourcePath = source
			req.SourceBasePath = ""
			err = d.uploader.Upload(ctx, req)
		}

		report.Results = append(report.Results, Result{Source: source, Err: err, Duration: time.Since(started)})
	}

	if failed := report.Failed(); failed > 0 {
		log.Errorf("%d of %d file(s) FAILED", failed, len(reqs))
	} else {
		log.Infof("all %d file(s) pushed", len(reqs))
	}
	return report
}
