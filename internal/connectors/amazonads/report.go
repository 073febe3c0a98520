package amazonads

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/adlumen/amzads/internal/core/domain"
	"github.com/adlumen/amzads/internal/logger"
)

// Poll policy. Report generation is known to take minutes, so the wait
// before the first status check is long; later waits start short and grow
// exponentially up to a cap. The attempt budget bounds total wall-clock
// time; transport retries inside a single poll are counted separately by
// the HTTP client.
const (
	reportInitialWait = 2 * time.Minute
	reportPollBase    = 30 * time.Second
	reportPollFactor  = 2
	reportPollMaxWait = 5 * time.Minute
	reportMaxPolls    = 30
	reportCreatePath  = "/reporting/reports"
	reportMediaType   = "application/vnd.createasyncreportrequest.v3+json"
)

// ReportStatus is the remote job status. It is authoritative only as of the
// last fetch; the poll loop always re-fetches.
type ReportStatus string

const (
	StatusPending    ReportStatus = "PENDING"
	StatusInProgress ReportStatus = "IN_PROGRESS"
	StatusCompleted  ReportStatus = "COMPLETED"
	StatusFailed     ReportStatus = "FAILED"
	StatusCancelled  ReportStatus = "CANCELLED"
)

// Terminal reports whether no further status transition can occur.
func (s ReportStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// ReportJob is a snapshot of a remote report job.
type ReportJob struct {
	ID            string
	Status        ReportStatus
	DownloadURL   string
	FailureReason string
}

// reportRequest is the report creation payload.
type reportRequest struct {
	Name          string              `json:"name"`
	StartDate     string              `json:"startDate"`
	EndDate       string              `json:"endDate"`
	Configuration reportConfiguration `json:"configuration"`
}

type reportConfiguration struct {
	AdProduct    string   `json:"adProduct"`
	GroupBy      []string `json:"groupBy"`
	Columns      []string `json:"columns,omitempty"`
	ReportTypeID string   `json:"reportTypeId"`
	TimeUnit     string   `json:"timeUnit"`
	Format       string   `json:"format"`
}

// ReportJobClient drives one report job from creation through polling to
// its downloaded, decoded records.
type ReportJobClient struct {
	client *Client
	sleep  func(ctx context.Context, d time.Duration) error
	now    func() time.Time
}

// NewReportJobClient creates a report client on top of the authenticated
// HTTP client.
func NewReportJobClient(client *Client) *ReportJobClient {
	return &ReportJobClient{
		client: client,
		sleep:  sleepContext,
		now:    time.Now,
	}
}

// Run executes the full pipeline for one report stream: create the job,
// poll to a terminal state, download and decode the artifact.
func (r *ReportJobClient) Run(ctx context.Context, stream *Stream, cfg *Config) ([]domain.Record, error) {
	job, err := r.Create(ctx, stream, cfg)
	if err != nil {
		return nil, err
	}

	job, err = r.WaitForCompletion(ctx, job.ID)
	if err != nil {
		return nil, err
	}

	raw, encoding, err := r.download(ctx, job.DownloadURL)
	if err != nil {
		return nil, err
	}

	records, err := DecodeReport(raw, encoding)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", job.ID, err)
	}
	return records, nil
}

// Create issues the report creation request and returns the new job in its
// initial state. The report name is unique per invocation; the remote
// service rejects duplicate names for overlapping windows.
func (r *ReportJobClient) Create(ctx context.Context, stream *Stream, cfg *Config) (*ReportJob, error) {
	spec := stream.ReportSpec(cfg, r.now())
	spec.Name = fmt.Sprintf("%s %s", stream.Name, uuid.NewString())

	body, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal report spec: %w", err)
	}

	resp, err := r.client.Do(ctx, &Request{
		Method:    http.MethodPost,
		Path:      reportCreatePath,
		MediaType: reportMediaType,
		Body:      body,
	})
	if err != nil {
		return nil, fmt.Errorf("create report for %s: %w", stream.Name, err)
	}

	id := gjson.GetBytes(resp.Body, "reportId").String()
	if id == "" {
		return nil, fmt.Errorf("create report for %s: response missing reportId", stream.Name)
	}

	logger.Debug("amazonads: created report job %s for stream %s", id, stream.Name)
	return &ReportJob{ID: id, Status: StatusPending}, nil
}

// Poll fetches the job's current status from the remote service.
func (r *ReportJobClient) Poll(ctx context.Context, jobID string) (*ReportJob, error) {
	resp, err := r.client.Do(ctx, &Request{
		Method:    http.MethodGet,
		Path:      reportCreatePath + "/" + jobID,
		MediaType: reportMediaType,
	})
	if err != nil {
		return nil, fmt.Errorf("poll report %s: %w", jobID, err)
	}

	return &ReportJob{
		ID:            jobID,
		Status:        ReportStatus(gjson.GetBytes(resp.Body, "status").String()),
		DownloadURL:   gjson.GetBytes(resp.Body, "url").String(),
		FailureReason: gjson.GetBytes(resp.Body, "failureReason").String(),
	}, nil
}

// WaitForCompletion polls the job until COMPLETED, failing on FAILED or
// CANCELLED, and abandoning the job when the poll budget runs out.
func (r *ReportJobClient) WaitForCompletion(ctx context.Context, jobID string) (*ReportJob, error) {
	wait := reportInitialWait
	lastStatus := StatusPending

	for attempt := 1; attempt <= reportMaxPolls; attempt++ {
		if err := r.sleep(ctx, jitter(wait)); err != nil {
			return nil, err
		}

		job, err := r.Poll(ctx, jobID)
		if err != nil {
			return nil, err
		}
		lastStatus = job.Status
		logger.Debug("amazonads: report %s poll %d/%d: %s", jobID, attempt, reportMaxPolls, job.Status)

		switch job.Status {
		case StatusCompleted:
			if job.DownloadURL == "" {
				return nil, fmt.Errorf("report %s: %w: completed without url", jobID, domain.ErrMalformedReport)
			}
			return job, nil
		case StatusFailed, StatusCancelled:
			return nil, &ReportFailedError{JobID: jobID, Status: job.Status, Reason: job.FailureReason}
		}

		if attempt == 1 {
			wait = reportPollBase
		} else {
			wait *= reportPollFactor
			if wait > reportPollMaxWait {
				wait = reportPollMaxWait
			}
		}
	}

	return nil, &ReportTimeoutError{JobID: jobID, LastStatus: lastStatus, Attempts: reportMaxPolls}
}

// download fetches the finished artifact from its pre-signed URL.
func (r *ReportJobClient) download(ctx context.Context, url string) ([]byte, string, error) {
	resp, err := r.client.Do(ctx, &Request{
		Method:          http.MethodGet,
		URL:             url,
		Unauthenticated: true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("download report artifact: %w", err)
	}
	return resp.Body, resp.Header.Get("Content-Encoding"), nil
}
