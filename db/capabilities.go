package db

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"agrocontrol_app_go/config"

	"go.uber.org/zap"
)

const listProceduresSQL = `SELECT ROUTINE_NAME AS name
FROM information_schema.ROUTINES
WHERE ROUTINE_SCHEMA = DATABASE() AND ROUTINE_TYPE = 'PROCEDURE'
ORDER BY ROUTINE_NAME`

// SupportsProcedures reports whether the driver can run CALL statements at all
func (g *Gateway) SupportsProcedures() bool {
	return g.driver == config.DriverMySQL
}

// ProbeProcedures records which stored procedures exist in the connected
// database. Models consult the result instead of trying each procedure and
// falling back on failure. Drivers without procedure support report none.
func (g *Gateway) ProbeProcedures(ctx context.Context) ([]string, error) {
	if !g.SupportsProcedures() {
		g.SetProcedures()
		g.log.Info("Stored procedures not supported by driver, using SQL statements",
			zap.String("driver", g.driver))
		return []string{}, nil
	}

	rows, err := g.Query(ctx, listProceduresSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored procedures: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if name, ok := row["name"].(string); ok && name != "" {
			names = append(names, name)
		}
	}
	g.SetProcedures(names...)
	g.log.Info("Stored procedures detected", zap.Strings("procedures", names))
	return names, nil
}

// SetProcedures replaces the detected procedure set
func (g *Gateway) SetProcedures(names ...string) {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[strings.ToLower(name)] = true
	}

	g.procMu.Lock()
	g.procedures = set
	g.procMu.Unlock()
}

// HasProcedure reports whether the probe found the named procedure.
// MySQL routine names are case-insensitive, so the lookup is too.
func (g *Gateway) HasProcedure(name string) bool {
	if name == "" {
		return false
	}
	g.procMu.RLock()
	defer g.procMu.RUnlock()
	return g.procedures[strings.ToLower(name)]
}

// Procedures returns the detected procedure names, sorted
func (g *Gateway) Procedures() []string {
	g.procMu.RLock()
	defer g.procMu.RUnlock()

	names := make([]string, 0, len(g.procedures))
	for name := range g.procedures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
