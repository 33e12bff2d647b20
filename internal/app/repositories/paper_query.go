package repositories

import (
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/paperarchive/internal/app/models"
	"github.com/yigit/paperarchive/internal/pkg/helpers"
)

// searchColumns are the columns a free-text search looks into, OR-combined.
var searchColumns = []string{"p.title", "p.course", "p.description", "p.subject"}

// BuildPaperFilter translates a parsed filter into a WHERE predicate over the
// question_papers table aliased as "p". Every present filter is AND-combined;
// an empty result means "no constraint".
//
// search is a case-insensitive literal substring match; subject and semester
// are case-insensitive whole-value matches; year is exact.
func BuildPaperFilter(f models.PaperFilter) squirrel.And {
	where := squirrel.And{}

	if term := trimmed(f.Search); term != "" {
		pattern := "%" + helpers.EscapeLikePattern(term) + "%"
		anyColumn := squirrel.Or{}
		for _, col := range searchColumns {
			anyColumn = append(anyColumn, squirrel.ILike{col: pattern})
		}
		where = append(where, anyColumn)
	}

	if subject := trimmed(f.Subject); subject != "" {
		where = append(where, squirrel.Expr("LOWER(p.subject) = LOWER(?)", subject))
	}

	if f.Year != nil {
		where = append(where, squirrel.Eq{"p.year": *f.Year})
	}

	if semester := trimmed(f.Semester); semester != "" {
		where = append(where, squirrel.Expr("LOWER(p.semester) = LOWER(?)", semester))
	}

	return where
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
