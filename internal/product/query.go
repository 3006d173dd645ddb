package product

import (
	"strconv"
	"strings"
)

// productColumns maps legacy nullable columns to the model's zero values so rows collect by name.
const productColumns = `id, name, description, price, category,
	COALESCE(images, '{}') AS images,
	COALESCE(stock, 0) AS stock,
	COALESCE(featured, false) AS featured,
	created_at, updated_at`

const listOrder = " ORDER BY created_at DESC, id DESC"

type listQuery struct {
	SQL       string
	Args      []any
	CountSQL  string
	CountArgs []any
}

// buildListQuery assembles the page query and the matching count query from one where clause,
// so the total always agrees with the filter used for the page. Values travel as positional
// parameters only.
func buildListQuery(f Filter, p *Pagination) listQuery {
	where, args := whereClause(f)

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(productColumns)
	sb.WriteString(" FROM products")
	sb.WriteString(where)
	sb.WriteString(listOrder)

	pageArgs := append([]any(nil), args...)
	if p != nil {
		n := len(pageArgs)
		sb.WriteString(" LIMIT $" + strconv.Itoa(n+1) + " OFFSET $" + strconv.Itoa(n+2))
		pageArgs = append(pageArgs, p.Limit, p.Offset())
	}

	return listQuery{
		SQL:       sb.String(),
		Args:      pageArgs,
		CountSQL:  "SELECT COUNT(*) FROM products" + where,
		CountArgs: args,
	}
}

func whereClause(f Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if f.Category != nil {
		args = append(args, *f.Category)
		conds = append(conds, "category = $"+strconv.Itoa(len(args)))
	}
	if f.FeaturedOnly {
		conds = append(conds, "featured = TRUE")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
