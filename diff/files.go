// diff/files.go
package diff

import (
	"fmt"

	"github.com/gewnthar/tollwatch/models"
	"github.com/gewnthar/tollwatch/snapshot"
)

// CompareFiles loads two snapshot files of kind and compares them.
func CompareFiles(kind models.Kind, previousPath, currentPath string) (Result, error) {
	previous, err := snapshot.Load(previousPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load previous %s snapshot: %w", kind, err)
	}
	current, err := snapshot.Load(currentPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load current %s snapshot: %w", kind, err)
	}
	res := Compare(kind, previous, current)
	res.PreviousPath, res.CurrentPath = previousPath, currentPath
	return res, nil
}
