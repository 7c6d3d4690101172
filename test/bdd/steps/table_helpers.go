package steps

import (
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/colony-go/internal/domain/colony"
)

// getCellValue returns the cell of row under columnName, using the first
// table row as the header
func getCellValue(table *godog.Table, row *messages.PickleTableRow, columnName string) string {
	if len(table.Rows) == 0 {
		return ""
	}

	headerRow := table.Rows[0]
	for i, headerCell := range headerRow.Cells {
		if headerCell.Value == columnName {
			if i < len(row.Cells) {
				return row.Cells[i].Value
			}
			return ""
		}
	}
	return ""
}

// roleCounts reads a | role | count | table
func roleCounts(table *godog.Table) (map[colony.Role]int, error) {
	counts := make(map[colony.Role]int)
	for _, row := range table.Rows[1:] {
		role, err := colony.ParseRole(getCellValue(table, row, "role"))
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(getCellValue(table, row, "count"))
		if err != nil {
			return nil, fmt.Errorf("bad count for %s: %w", role, err)
		}
		counts[role] = n
	}
	return counts, nil
}

// compareComposition reports every role of want that differs in got
func compareComposition(label string, got colony.Composition, want map[colony.Role]int) error {
	for role, n := range want {
		if got.Get(role) != n {
			return fmt.Errorf("expected %s %s to be %d, got %d (full: %s)", label, role, n, got.Get(role), got)
		}
	}
	return nil
}
