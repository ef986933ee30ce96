package export

import (
	"context"
	"fmt"
	"sync"

	"financas/internal/report"
)

// MemoryWriter keeps exported content in memory. It stands in for the
// Sheets client in tests and when no export target is configured.
type MemoryWriter struct {
	mu         sync.Mutex
	reports    []report.Report
	statements []string
}

var _ StatementWriter = (*MemoryWriter)(nil)

func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{}
}

func (m *MemoryWriter) AppendReport(ctx context.Context, r report.Report) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
	return fmt.Sprintf("mem:%d", len(m.reports)), nil
}

func (m *MemoryWriter) WriteStatement(ctx context.Context, statement string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statements = append(m.statements, statement)
	return nil
}

// Reports returns the appended reports
func (m *MemoryWriter) Reports() []report.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]report.Report(nil), m.reports...)
}

// Statements returns the written statements
func (m *MemoryWriter) Statements() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.statements...)
}
