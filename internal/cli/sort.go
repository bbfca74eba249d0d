package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/masters-pool/internal/competitor"
)

// SortOrder represents the available roster sorting options
type SortOrder string

const (
	SortByAdded SortOrder = "added"
	SortByName  SortOrder = "name"
)

func parseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(s))); order {
	case SortByAdded, SortByName:
		return order, nil
	case "":
		return SortByAdded, nil
	}
	return "", fmt.Errorf("invalid sort: %s (must be 'added' or 'name')", s)
}

// sortCompetitors sorts the roster in place
func sortCompetitors(competitors []competitor.Competitor, order SortOrder) {
	switch order {
	case SortByAdded:
		sort.SliceStable(competitors, func(i, j int) bool {
			return competitors[i].CreatedAt.Before(competitors[j].CreatedAt)
		})
	case SortByName:
		sort.SliceStable(competitors, func(i, j int) bool {
			a, b := strings.ToLower(competitors[i].Name), strings.ToLower(competitors[j].Name)
			if a != b {
				return a < b
			}
			// If names are equal, older entries first
			return competitors[i].CreatedAt.Before(competitors[j].CreatedAt)
		})
	}
}
