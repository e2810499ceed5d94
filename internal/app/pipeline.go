package service

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/okian/shortlist/internal/adapters/google"
	"github.com/okian/shortlist/internal/adapters/pdftext"
	"github.com/okian/shortlist/internal/adapters/repository"
	"github.com/okian/shortlist/internal/adapters/storage"
	"github.com/okian/shortlist/internal/domain/model"
	"github.com/okian/shortlist/internal/domain/scoring"
	"github.com/okian/shortlist/internal/domain/shortlist"
	"github.com/okian/shortlist/pkg/logger"
	"github.com/okian/shortlist/pkg/metrics"
)

// pipeline screens a single task: fetch, extract, score, keep, report.
type pipeline struct {
	extractor     pdftext.Extractor
	scorer        scoring.Scorer
	policy        shortlist.Policy
	store         repository.Store
	files         storage.Store
	drive         google.Files
	sink          google.ResultSink
	uploadToDrive bool
	logger        logger.Logger

	// keepMu pairs the store read with UpdateBest so a losing CV file is
	// always the one removed.
	keepMu sync.Mutex
}

// Process implements worker.Processor.
func (p *pipeline) Process(ctx context.Context, t model.Task) model.Result { //nolint:gocritic // hugeParam
	res := model.Result{
		ID:            t.ID,
		Name:          t.Candidate.Name,
		JobID:         t.Candidate.JobID,
		MatchedSkills: []string{},
		Key:           t.Key,
	}
	log := p.logger.With(
		logger.String("task_id", t.ID),
		logger.String("candidate", res.Name),
		logger.String("job_id", res.JobID),
	)

	data := t.CV
	if data == nil {
		var err error
		if data, err = p.download(ctx, t.Candidate.CVLink); err != nil {
			return failed(res, "download", err)
		}
		res.DriveURL = t.Candidate.CVLink
		if id, err := google.ExtractFileID(t.Candidate.CVLink); err == nil {
			res.DriveFileID = id
		}
	}

	start := time.Now()
	text, err := p.extractor.Extract(ctx, data)
	metrics.RecordExtractLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return failed(res, "extract", err)
	}

	start = time.Now()
	sc, err := p.scorer.Score(ctx, scoring.Input{JobID: res.JobID, Text: text})
	metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return failed(res, "score", err)
	}
	res.Score = sc.Score
	if sc.Matched != nil {
		res.MatchedSkills = sc.Matched
	}
	res.Shortlisted = p.policy.Shortlisted(res.Score)
	metrics.RecordScreened(res.JobID, res.Score)

	if res.Shortlisted {
		metrics.RecordShortlisted(res.JobID)
		path, err := p.files.Save(ctx, shortlist.KeptName(res.JobID, res.Name, res.ID), data)
		if err != nil {
			metrics.RecordErrorByComponent("pipeline", "storage")
			log.Error(ctx, "failed to keep shortlisted cv", logger.Error(err))
		} else {
			res.CVPath = path
		}
	}

	if t.CV != nil && p.uploadToDrive && p.drive != nil {
		up, err := p.drive.Upload(ctx, shortlist.StoredName(res.JobID, res.Name), bytes.NewReader(data))
		if err != nil {
			metrics.RecordErrorByComponent("pipeline", "drive_upload")
			log.Warn(ctx, "drive upload failed", logger.Error(err))
		} else {
			res.DriveFileID = up.ID
			res.DriveURL = up.WebLink
		}
	}

	p.keep(ctx, log, res)

	if p.sink != nil {
		if err := p.sink.AppendResult(ctx, res); err != nil {
			metrics.RecordErrorByComponent("pipeline", "sheet_append")
			log.Warn(ctx, "failed to append result to sheet", logger.Error(err))
		}
	}

	log.Debug(ctx, "cv screened",
		logger.Int("score", res.Score),
		logger.Bool("shortlisted", res.Shortlisted),
	)
	return res
}

// keep records res as the candidate's best result and removes the CV file of
// whichever result lost.
func (p *pipeline) keep(ctx context.Context, log logger.Logger, res model.Result) { //nolint:gocritic // hugeParam
	p.keepMu.Lock()
	prev, err := p.store.Get(ctx, res.JobID, res.Name)
	hadPrev := err == nil
	updated, err := p.store.UpdateBest(ctx, res)
	p.keepMu.Unlock()
	if err != nil {
		metrics.RecordErrorByComponent("pipeline", "store")
		log.Error(ctx, "failed to store result", logger.Error(err))
	}

	var stale string
	switch {
	case !updated:
		stale = res.CVPath
	case hadPrev:
		stale = prev.CVPath
	}
	if stale == "" {
		return
	}
	if err := p.files.Remove(ctx, stale); err != nil {
		metrics.RecordErrorByComponent("pipeline", "storage")
		log.Warn(ctx, "failed to remove superseded cv", logger.String("path", stale), logger.Error(err))
	}
}

func (p *pipeline) download(ctx context.Context, link string) ([]byte, error) {
	if p.drive == nil {
		return nil, ErrFilesDisabled
	}
	return p.drive.Download(ctx, link)
}

func failed(res model.Result, stage string, err error) model.Result { //nolint:gocritic // hugeParam
	metrics.RecordFailed(stage)
	res.Score = 0
	res.MatchedSkills = []string{}
	res.Shortlisted = false
	res.Error = err.Error()
	return res
}
