package build

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BuildAPI is the slice of Client the orchestrator needs. Narrowed to
// an interface so tests can script the three stages.
type BuildAPI interface {
	QueryJob(ctx context.Context, buildPath, branch string) (*JobQueryResponse, error)
	QueryPackageRuns(ctx context.Context, jobID string) (*PackageRunResponse, error)
	FetchReport(ctx context.Context, jobID, packageName, name string) ([]byte, error)
}

// ResultStore persists the pipeline's outcome. Satisfied by
// competition.SubmissionStore.
type ResultStore interface {
	UpdateResult(id int64, passed int, completionTime *int, submitTime time.Time) error
}

// Broadcaster pushes a refresh signal to connected dashboard clients
type Broadcaster interface {
	BroadcastRefresh()
}

// Ingestor drives the three-stage chain for one submission: job lookup,
// package-run lookup, report fetch. Terminal states are a resolved
// passed count, an explicit zero for runs with no results, or
// abandonment on timeout.
type Ingestor struct {
	api         BuildAPI
	store       ResultStore
	broadcaster Broadcaster
	logger      *zap.SugaredLogger

	jobPolicy    Policy
	reportPolicy Policy
}

// NewIngestor creates an ingestor with the standard stage policies
func NewIngestor(api BuildAPI, store ResultStore, broadcaster Broadcaster, logger *zap.SugaredLogger) *Ingestor {
	return &Ingestor{
		api:          api,
		store:        store,
		broadcaster:  broadcaster,
		logger:       logger,
		jobPolicy:    jobQueryPolicy,
		reportPolicy: reportPolicy,
	}
}

// Run executes the chain for one submission. It is designed to run in a
// goroutine detached from the webhook request: it never returns an
// error and never lets a panic escape. Per run it performs at most one
// persistence write and at most one broadcast.
func (ing *Ingestor) Run(ctx context.Context, submissionID int64, buildPath, branch string) {
	defer func() {
		if r := recover(); r != nil && ing.logger != nil {
			ing.logger.Errorw("Ingestion run panicked",
				"submission_id", submissionID,
				"panic", r)
		}
	}()

	log := ing.logger
	if log != nil {
		log = log.With(
			"submission_id", submissionID,
			"build_path", buildPath,
			"branch", branch,
		)
	}

	// Stage 1: wait for the build system to register the job
	jobResp, err := PollUntil(ctx, ing.jobPolicy, log,
		func(ctx context.Context) (*JobQueryResponse, error) {
			return ing.api.QueryJob(ctx, buildPath, branch)
		},
		func(resp *JobQueryResponse) bool {
			return len(resp.Info) > 0 && resp.Info[0].JobID != ""
		},
	)
	if err != nil {
		if log != nil {
			log.Warnw("Abandoning ingestion, no job id", "error", err)
		}
		return
	}
	jobID := jobResp.Info[0].JobID
	if log != nil {
		log = log.With("job_id", jobID)
		log.Infow("Build job found")
	}

	// Stage 2: single fetch of the run descriptor, no retries
	runResp, err := ing.api.QueryPackageRuns(ctx, jobID)
	if err != nil {
		if log != nil {
			log.Warnw("Abandoning ingestion, package run query failed", "error", err)
		}
		return
	}

	if len(runResp.PackageRunResults) == 0 {
		// The job ran but produced no suites at all: that is a real
		// result of zero passed cases, not an abandonment.
		ing.resolve(submissionID, 0, log)
		return
	}

	packageName, reportName, ok := selectPackage(runResp.PackageRunResults)
	if !ok {
		// Unlike the empty list, an unrecognized suite means we cannot
		// judge the run. Leave the submission untouched.
		if log != nil {
			log.Warnw("No recognized package in run results, submission left unresolved",
				"packages", packageNames(runResp.PackageRunResults))
		}
		return
	}
	if log != nil {
		log = log.With("package_name", packageName, "report_name", reportName)
	}

	// Stage 3: fetch and parse the report until it is ready
	passed, err := PollUntil(ctx, ing.reportPolicy, log,
		func(ctx context.Context) (int, error) {
			body, err := ing.api.FetchReport(ctx, jobID, packageName, reportName)
			if err != nil {
				return 0, err
			}
			return ParseReport(reportName, body)
		},
		func(int) bool { return true },
	)
	if err != nil {
		if log != nil {
			log.Warnw("Abandoning ingestion, report never became ready", "error", err)
		}
		return
	}

	ing.resolve(submissionID, passed, log)
}

// resolve performs the run's single write and single broadcast
func (ing *Ingestor) resolve(submissionID int64, passed int, log *zap.SugaredLogger) {
	if err := ing.store.UpdateResult(submissionID, passed, nil, time.Now()); err != nil {
		if log != nil {
			log.Errorw("Failed to persist submission result",
				"passed", passed,
				"error", err)
		}
		// No broadcast without a successful write; clients would
		// refresh into stale data.
		return
	}

	if log != nil {
		log.Infow("Submission resolved", "passed", passed)
	}
	ing.broadcaster.BroadcastRefresh()
}

// selectPackage picks the first recognized suite from the run results
func selectPackage(results []PackageRunResult) (packageName, reportName string, ok bool) {
	for _, result := range results {
		if name, recognized := ReportNameForPackage(result.PackageName); recognized {
			return result.PackageName, name, true
		}
	}
	return "", "", false
}

func packageNames(results []PackageRunResult) []string {
	names := make([]string, len(results))
	for i, result := range results {
		names[i] = result.PackageName
	}
	return names
}
