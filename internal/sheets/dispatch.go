package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	sheets_v4 "google.golang.org/api/sheets/v4"

	"github.com/teemow/sheetsmcp/internal/instrumentation"
	"github.com/teemow/sheetsmcp/internal/logging"
)

// defaultMaxAttempts bounds retries of transient failures per remote call.
const defaultMaxAttempts = 4

// DispatchResult is the per-sub-request outcome of a Dispatch call. Partial
// success is never collapsed: every spec gets its own result.
type DispatchResult struct {
	// Index is the position of the spec in the Dispatch input
	Index int `json:"index"`

	// Kind names the operation variant (format, merge, chart, ...)
	Kind string `json:"kind"`

	// Applied reports whether the mutation reached the spreadsheet
	Applied bool `json:"applied"`

	// Detail carries a short human-readable success summary
	Detail string `json:"detail,omitempty"`

	// Error carries the failure message for JSON output
	Error string `json:"error,omitempty"`

	// Err is the typed failure for errors.As inspection
	Err error `json:"-"`
}

func (r *DispatchResult) fail(err error) {
	r.Applied = false
	r.Err = err
	if err != nil {
		r.Error = err.Error()
	}
}

// Dispatcher groups operation specs per spreadsheet into API calls:
// structural mutations go into a single atomic batchUpdate, plain formulas
// through the values API. Transient failures are retried with exponential
// backoff and jitter; exhaustion surfaces RateLimitError or NetworkError.
type Dispatcher struct {
	client      *Client
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
	maxAttempts int
	newBackOff  func() backoff.BackOff
}

// NewDispatcher creates a dispatcher with the default retry policy.
func NewDispatcher(client *Client, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		client:      client,
		logger:      logger,
		maxAttempts: defaultMaxAttempts,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

// WithMaxAttempts overrides the retry bound.
func (d *Dispatcher) WithMaxAttempts(n int) *Dispatcher {
	if n > 0 {
		d.maxAttempts = n
	}
	return d
}

// WithMetrics attaches a metrics recorder for retry counting.
func (d *Dispatcher) WithMetrics(metrics *instrumentation.Metrics) *Dispatcher {
	d.metrics = metrics
	return d
}

// retryCall runs op with the dispatcher's backoff policy. Non-transient
// errors abort immediately. Returns the number of attempts made.
func retryCall[T any](ctx context.Context, d *Dispatcher, operation string, op func() (T, error)) (T, int, error) {
	attempts := 0
	result, err := backoff.Retry(ctx, func() (T, error) {
		attempts++
		if attempts > 1 && d.metrics != nil {
			d.metrics.RecordGoogleAPIRetry(ctx, operation)
		}
		v, err := op()
		if err != nil && !isTransient(err) {
			return v, backoff.Permanent(err)
		}
		if err != nil && attempts > 1 {
			d.logger.Debug("retrying transient failure",
				logging.Attempt(attempts), logging.Err(err))
		}
		return v, err
	},
		backoff.WithBackOff(d.newBackOff()),
		backoff.WithMaxTries(uint(d.maxAttempts)),
	)
	return result, attempts, err
}

// Dispatch validates, builds, and executes the given specs against one
// spreadsheet. The returned slice has one entry per input spec in order.
func (d *Dispatcher) Dispatch(ctx context.Context, spreadsheetID string, specs []*OperationSpec) []DispatchResult {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceSheets, "dispatch",
		instrumentation.NewSpanAttributeBuilder().
			WithResource("spreadsheet", instrumentation.TruncateDocumentID(spreadsheetID)).
			Build()...)
	defer span.End()

	logger := logging.WithSpreadsheet(d.logger, spreadsheetID)
	started := time.Now()

	results := make([]DispatchResult, len(specs))
	for i, spec := range specs {
		results[i] = DispatchResult{Index: i, Kind: spec.Kind()}
		if err := spec.Validate(); err != nil {
			results[i].fail(err)
		}
	}

	// Sheet-name resolution is one metadata read shared by all specs.
	resolver, _, err := d.resolverWithRetry(ctx, spreadsheetID)
	if err != nil {
		for i := range results {
			if results[i].Err == nil {
				results[i].fail(err)
			}
		}
		instrumentation.SetSpanError(span, err)
		return results
	}

	// Build phase: structural requests are grouped for one batchUpdate,
	// plain formulas routed through the values API.
	var batchRequests []*sheets_v4.Request
	var batchMembers []int // result index per position in batchRequests
	var valueOps []int

	for i, spec := range specs {
		if results[i].Err != nil {
			continue
		}
		if spec.ValuesOperation() != nil {
			valueOps = append(valueOps, i)
			continue
		}
		if nr := spec.NamedRange; nr != nil && nr.Action == NamedRangeDelete && nr.NamedRangeID == "" {
			if err := d.resolveNamedRangeID(ctx, spreadsheetID, nr); err != nil {
				results[i].fail(err)
				continue
			}
		}
		reqs, err := spec.BuildRequests(resolver)
		if err != nil {
			results[i].fail(err)
			continue
		}
		for _, req := range reqs {
			batchRequests = append(batchRequests, req)
			batchMembers = append(batchMembers, i)
		}
	}

	if len(batchRequests) > 0 {
		d.dispatchBatch(ctx, spreadsheetID, batchRequests, batchMembers, results)
	}

	for _, i := range valueOps {
		d.dispatchFormula(ctx, spreadsheetID, specs[i].Formula, &results[i])
	}

	failed := 0
	for i := range results {
		if results[i].Err != nil {
			failed++
		}
	}
	if failed > 0 {
		instrumentation.SetSpanError(span, fmt.Errorf("%d of %d operations failed", failed, len(specs)))
	} else {
		instrumentation.SetSpanSuccess(span)
	}

	logger.Info("dispatch complete",
		logging.Requests(len(specs)),
		slog.Duration(logging.KeyDuration, time.Since(started)))
	return results
}

func (d *Dispatcher) resolverWithRetry(ctx context.Context, spreadsheetID string) (SheetResolver, int, error) {
	resolver, attempts, err := retryCall(ctx, d, "metadata", func() (SheetResolver, error) {
		return d.client.SheetResolverFor(ctx, spreadsheetID)
	})
	if err != nil {
		return nil, attempts, classifyCallError(err, attempts, -1)
	}
	return resolver, attempts, nil
}

// dispatchBatch sends the grouped structural requests in one batchUpdate.
// The call is atomic remote-side: on failure no sub-request was applied, and
// every participating result reports that.
func (d *Dispatcher) dispatchBatch(ctx context.Context, spreadsheetID string, requests []*sheets_v4.Request, members []int, results []DispatchResult) {
	resp, attempts, err := retryCall(ctx, d, "batch_update", func() (*sheets_v4.BatchUpdateSpreadsheetResponse, error) {
		return d.client.BatchUpdate(ctx, spreadsheetID, requests)
	})
	if err != nil {
		classified := classifyCallError(err, attempts, failingSubRequest(err))
		for pos, i := range members {
			results[i].fail(&batchAbortedError{cause: classified, position: pos})
		}
		d.logger.Warn("batch update failed",
			logging.Spreadsheet(spreadsheetID),
			logging.Requests(len(requests)),
			logging.Attempt(attempts),
			logging.Err(classified))
		return
	}

	for pos, i := range members {
		results[i].Applied = true
		if detail := replyDetail(resp, pos); detail != "" && results[i].Detail == "" {
			results[i].Detail = detail
		}
	}
}

// dispatchFormula applies a plain formula through the values API with
// USER_ENTERED so the backend parses it.
func (d *Dispatcher) dispatchFormula(ctx context.Context, spreadsheetID string, f *FormulaSpec, result *DispatchResult) {
	target := f.Range
	if target.StartRow != Unbounded && target.StartCol != Unbounded {
		// Anchor the formula at the top-left cell; fill formulas replicate
		// from there when the user wrote a relative reference.
		anchor := RangeAddress{
			Sheet:    target.Sheet,
			StartRow: target.StartRow,
			EndRow:   target.StartRow + 1,
			StartCol: target.StartCol,
			EndCol:   target.StartCol + 1,
		}
		target = anchor
	}

	update, attempts, err := retryCall(ctx, d, "write", func() (*UpdateResult, error) {
		return d.client.WriteRange(ctx, spreadsheetID, target.String(),
			[][]interface{}{{f.NormalizedFormula()}}, InputUserEntered)
	})
	if err != nil {
		result.fail(classifyCallError(err, attempts, -1))
		return
	}
	result.Applied = true
	result.Detail = fmt.Sprintf("formula applied to %s", update.UpdatedRange)
}

// resolveNamedRangeID fills in the ID for a delete-by-name spec.
func (d *Dispatcher) resolveNamedRangeID(ctx context.Context, spreadsheetID string, nr *NamedRangeSpec) error {
	infos, attempts, err := retryCall(ctx, d, "list", func() ([]*NamedRangeInfo, error) {
		return d.client.ListNamedRanges(ctx, spreadsheetID)
	})
	if err != nil {
		return classifyCallError(err, attempts, -1)
	}
	for _, info := range infos {
		if info.Name == nr.Name {
			nr.NamedRangeID = info.ID
			return nil
		}
	}
	return validationErrorf(ValidationBadName, "name", "no named range called %q", nr.Name)
}

// failingSubRequest extracts the sub-request index from a batchUpdate
// rejection message like "Invalid requests[2]: ...". Returns -1 when the
// message carries no index.
func failingSubRequest(err error) int {
	if err == nil {
		return -1
	}
	m := subRequestPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return -1
	}
	idx, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return -1
	}
	return idx
}

var subRequestPattern = regexp.MustCompile(`requests\[(\d+)\]`)

// replyDetail extracts a short summary from a batchUpdate reply.
func replyDetail(resp *sheets_v4.BatchUpdateSpreadsheetResponse, pos int) string {
	if resp == nil || pos >= len(resp.Replies) || resp.Replies[pos] == nil {
		return ""
	}
	reply := resp.Replies[pos]
	switch {
	case reply.AddChart != nil && reply.AddChart.Chart != nil:
		return fmt.Sprintf("chart %d created", reply.AddChart.Chart.ChartId)
	case reply.AddNamedRange != nil && reply.AddNamedRange.NamedRange != nil:
		return fmt.Sprintf("named range %s created", reply.AddNamedRange.NamedRange.NamedRangeId)
	case reply.AddSheet != nil && reply.AddSheet.Properties != nil:
		return fmt.Sprintf("sheet %d added", reply.AddSheet.Properties.SheetId)
	default:
		return ""
	}
}

// batchAbortedError tags a sub-request with the batch-wide failure. The
// remote batchUpdate is atomic, so a failure anywhere means nothing applied.
type batchAbortedError struct {
	cause    error
	position int
}

func (e *batchAbortedError) Error() string {
	return fmt.Sprintf("batch aborted, no sub-request applied (sub-request %d): %v", e.position, e.cause)
}

func (e *batchAbortedError) Unwrap() error {
	return e.cause
}
