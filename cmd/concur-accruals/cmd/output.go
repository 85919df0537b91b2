package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/donaldgifford/concur-accruals/internal/api/client"
	"github.com/donaldgifford/concur-accruals/internal/secrets"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printUsersTable(w io.Writer, users []domain.Record) error {
	tw := newTabWriter(w)
	tw.writef("ID\tUSER NAME\tDISPLAY NAME\tACTIVE\n")
	for _, u := range users {
		tw.writef("%s\t%s\t%s\t%s\n",
			field(u, "id"),
			field(u, "userName"),
			truncate(field(u, "displayName"), 40),
			field(u, "active"),
		)
	}
	return tw.finish()
}

func printRecordDetail(w io.Writer, r domain.Record) error {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	tw := newTabWriter(w)
	for _, k := range keys {
		tw.writef("%s:\t%s\n", k, truncate(field(r, k), 80))
	}
	return tw.finish()
}

func printSecretsStatus(w io.Writer, st secrets.Status) error {
	tw := newTabWriter(w)
	tw.writef("Providers:\t%s\n", strings.Join(st.Providers, " -> "))
	tw.writef("Key Vault:\t%s\n", orDash(st.KeyVaultURL))
	tw.writef("Secrets File:\t%s\n", orDash(st.FilePath))
	tw.writef("Cache:\t%d entries, %ds TTL\n", st.CacheEntries, st.CacheTTLSeconds)
	return tw.finish()
}

func printJobRunsTable(w io.Writer, runs []domain.JobRun) error {
	tw := newTabWriter(w)
	tw.writef("JOB\tSTATUS\tSTARTED\tCOMPLETED\tERROR\n")
	for i := range runs {
		r := &runs[i]
		completed := "-"
		if r.CompletedAt != nil {
			completed = r.CompletedAt.Format(time.DateTime)
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\n",
			r.JobName,
			r.Status,
			r.StartedAt.Format(time.DateTime),
			completed,
			truncate(r.ErrorText, 40),
		)
	}
	return tw.finish()
}

func printRotationsTable(w io.Writer, rotations []domain.RefreshTokenRotation) error {
	tw := newTabWriter(w)
	tw.writef("ID\tSOURCE\tROTATED\n")
	for _, r := range rotations {
		tw.writef("%s\t%s\t%s\n", r.ID, r.Source, r.RotatedAt.Format(time.DateTime))
	}
	return tw.finish()
}

func printQuota(w io.Writer, q *client.Quota) error {
	limit := "unlimited"
	remaining := "-"
	if q.DailyLimit > 0 {
		limit = fmt.Sprintf("%d", q.DailyLimit)
		remaining = fmt.Sprintf("%d", q.Remaining)
	}
	tw := newTabWriter(w)
	tw.writef("Daily Limit:\t%s\n", limit)
	tw.writef("Used:\t%d\n", q.DailyUsed)
	tw.writef("Remaining:\t%s\n", remaining)
	if !q.ResetAt.IsZero() {
		tw.writef("Resets:\t%s\n", q.ResetAt.Local().Format(time.DateTime))
	}
	if q.BackoffRemaining > 0 {
		tw.writef("Backoff:\t%.0fs\n", q.BackoffRemaining)
	}
	return tw.finish()
}

func printCardTotals(w io.Writer, t *domain.CardTotals) error {
	tw := newTabWriter(w)
	tw.writef("Window:\t%s .. %s (%s)\n\n", t.DateFrom, t.DateTo, t.DateType)
	tw.writef("PROGRAM\tCOUNT\tTOTAL\tCURRENCY\n")
	for _, p := range t.ByProgram {
		tw.writef("%s\t%d\t%.2f\t%s\n", p.CardProgramID, p.Count, p.Total, p.Currency)
	}
	tw.writef("\nUSER\tCOUNT\tTOTAL\tCURRENCY\n")
	for _, u := range t.ByUser {
		tw.writef("%s\t%d\t%.2f\t%s\n", u.UserKey, u.Count, u.Total, u.Currency)
	}
	if t.Skipped > 0 {
		tw.writef("\nSkipped:\t%d\n", t.Skipped)
	}
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// field renders a top-level record value for a table cell.
func field(r domain.Record, key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return "-"
	}
	switch t := v.(type) {
	case string:
		return t
	case map[string]any, []any:
		data, err := json.Marshal(t)
		if err != nil {
			return "?"
		}
		return string(data)
	default:
		return fmt.Sprint(t)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
