package db

import (
	"strconv"
	"strings"

	"delivery-report-service/internal/report"
)

const recordColumns = `
		select p.id, p.tracking_number, p.cod_amount, p.delivery_fee, p.status,
		       p.customer_name, p.customer_phone, p.customer_address,
		       p.merchant_id, m.name, p.driver_id, d.name,
		       p.created_at, p.updated_at
		from packages p
		join merchants m on m.id = p.merchant_id
		left join drivers d on d.id = p.driver_id
		where 1 = 1`

const countColumns = `
		select count(*)
		from packages p
		where 1 = 1`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildRecordQuery renders q as SQL. Counting drops ordering and paging.
func buildRecordQuery(q report.RecordQuery, count bool) (string, []any) {
	query := strings.Builder{}
	if count {
		query.WriteString(countColumns)
	} else {
		query.WriteString(recordColumns)
	}

	args := make([]any, 0, 6)
	next := func(value any) string {
		args = append(args, value)
		return "$" + strconv.Itoa(len(args))
	}

	if q.MerchantID != nil {
		query.WriteString(" and p.merchant_id = " + next(*q.MerchantID))
	}
	if q.CourierID != nil {
		query.WriteString(" and p.driver_id = " + next(*q.CourierID))
	}
	if q.CreatedAt != nil {
		if q.CreatedAt.From != nil {
			query.WriteString(" and p.created_at >= " + next(*q.CreatedAt.From))
		}
		if q.CreatedAt.To != nil {
			query.WriteString(" and p.created_at <= " + next(*q.CreatedAt.To))
		}
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		placeholder := next("%" + likeEscaper.Replace(term) + "%")
		query.WriteString(" and (p.tracking_number ilike " + placeholder +
			" or p.customer_name ilike " + placeholder +
			" or p.customer_phone ilike " + placeholder +
			" or p.customer_address ilike " + placeholder + ")")
	}

	if count {
		return query.String(), args
	}

	query.WriteString(" order by p.created_at desc, p.id desc")
	if q.Skip > 0 {
		query.WriteString(" offset " + next(q.Skip))
	}
	if q.Take > 0 {
		query.WriteString(" limit " + next(q.Take))
	}
	return query.String(), args
}
