package postgres

import (
	"fmt"
	"strings"

	"mosaic/internal/domain"
	"mosaic/internal/domain/models"
)

// orderableFolderColumns whitelists ORDER BY targets; criteria order values
// are never interpolated without passing through this map.
var orderableFolderColumns = map[string]bool{
	"id":         true,
	"uid":        true,
	"name":       true,
	"path":       true,
	"created_at": true,
	"updated_at": true,
}

// buildFolderWhere renders the criteria into a WHERE clause (empty string
// when unconstrained) and its positional arguments. All non-nil fields are
// AND-combined.
func buildFolderWhere(c *models.FolderCriteria) (string, []interface{}) {
	var conds []string
	var args []interface{}

	next := func(arg interface{}) string {
		args = append(args, arg)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(c.ID) == 1 {
		conds = append(conds, "id = "+next(c.ID[0]))
	} else if len(c.ID) > 1 {
		conds = append(conds, "id = ANY("+next(c.ID)+")")
	}

	if c.UID != nil {
		conds = append(conds, stringCond("uid", *c.UID, next))
	}

	if c.VolumeID != nil {
		if c.VolumeID.Valid {
			conds = append(conds, "volume_id = "+next(c.VolumeID.Int64))
		} else {
			conds = append(conds, "volume_id IS NULL")
		}
	}

	if c.ParentID != nil {
		if c.ParentID.Valid {
			conds = append(conds, "parent_id = "+next(c.ParentID.Int64))
		} else {
			conds = append(conds, "parent_id IS NULL")
		}
	}

	if c.HasParent != nil {
		if *c.HasParent {
			conds = append(conds, "parent_id IS NOT NULL")
		} else {
			conds = append(conds, "parent_id IS NULL")
		}
	}

	if c.Name != nil {
		conds = append(conds, stringCond("name", *c.Name, next))
	}

	if c.Path != nil {
		// Paths may legitimately contain commas; escape them so the value
		// stays a single literal instead of splitting into alternatives.
		conds = append(conds, stringCond("path", escapeCommas(*c.Path), next))
	}

	if c.PathPrefix != nil {
		conds = append(conds, "path LIKE "+next(escapeLike(*c.PathPrefix)+"%")+" ESCAPE '\\'")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// buildFolderSuffix renders ORDER BY / LIMIT / OFFSET for the criteria.
func buildFolderSuffix(c *models.FolderCriteria) (string, error) {
	var parts []string

	if c.Order != "" {
		column := c.Order
		direction := ""
		if fields := strings.Fields(c.Order); len(fields) == 2 {
			column = fields[0]
			switch strings.ToUpper(fields[1]) {
			case "ASC", "DESC":
				direction = " " + strings.ToUpper(fields[1])
			default:
				return "", fmt.Errorf("%w: order direction %q", domain.ErrValidation, fields[1])
			}
		}
		if !orderableFolderColumns[column] {
			return "", fmt.Errorf("%w: cannot order folders by %q", domain.ErrValidation, column)
		}
		parts = append(parts, "ORDER BY "+column+direction)
	}

	if c.Limit > 0 {
		parts = append(parts, fmt.Sprintf("LIMIT %d", c.Limit))
	}
	if c.Offset > 0 {
		parts = append(parts, fmt.Sprintf("OFFSET %d", c.Offset))
	}

	return strings.Join(parts, " "), nil
}

// stringCond renders a string criterion. Values may hold comma-separated
// alternatives ("a,b" matches either); a backslash-escaped comma stays a
// literal comma within a single value.
func stringCond(column, value string, next func(interface{}) string) string {
	values := parseStringParam(value)
	if len(values) == 1 {
		return column + " = " + next(values[0])
	}
	return column + " = ANY(" + next(values) + ")"
}

// parseStringParam splits value on unescaped commas and unescapes the rest.
func parseStringParam(value string) []string {
	var values []string
	var current strings.Builder
	escaped := false

	for _, r := range value {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ',':
			values = append(values, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if escaped {
		current.WriteRune('\\')
	}
	values = append(values, current.String())

	return values
}

// escapeCommas protects a literal value from the multi-value split.
// Backslashes go first so an existing one is not read as an escape.
func escapeCommas(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	return strings.ReplaceAll(s, ",", "\\,")
}

// escapeLike protects LIKE metacharacters in a prefix match.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
