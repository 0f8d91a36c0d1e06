package storage

import (
	"context"

	"pairScope/internal/pairlist"
)

// ReportSink persists refresh reports.
type ReportSink interface {
	PutReport(ctx context.Context, report pairlist.RefreshReport) error
}

// Observer adapts a ReportSink to the manager's observer hook.
func Observer(sink ReportSink) pairlist.Observer {
	return pairlist.ObserverFunc(sink.PutReport)
}
