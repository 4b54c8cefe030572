package metrics

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AngelCh415/marketing-etl/internal/export"
	"github.com/AngelCh415/marketing-etl/internal/models"
	"github.com/AngelCh415/marketing-etl/internal/store"
)

type Service struct{ st *store.MemoryStore }

func NewService(st *store.MemoryStore) *Service { return &Service{st: st} }
func norm(s string) string                      { return strings.ToLower(strings.TrimSpace(s)) }

func csvSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, p := range strings.Split(s, ",") {
		p = norm(p)
		if p != "" {
			out[p] = struct{}{}
		}
	}
	return out
}

// Query filters one report table by from, to (YYYY-MM-DD, inclusive) and a
// comma separated channel list, then paginates with limit and offset.
func (s *Service) Query(g store.Granularity, v url.Values) ([]models.Metrics, error) {
	from, err := parseBound(v.Get("from"))
	if err != nil {
		return nil, err
	}
	to, err := parseBound(v.Get("to"))
	if err != nil {
		return nil, err
	}
	chSet := csvSet(v.Get("channel"))
	limit := atoiDef(v.Get("limit"), 100)
	offset := atoiDef(v.Get("offset"), 0)

	rows := s.st.Query(g, from, to, func(r models.ReportRow) bool {
		if len(chSet) > 0 {
			if _, ok := chSet[norm(r.Channel)]; !ok {
				return false
			}
		}
		return true
	})

	out := ToMetrics(rows)
	limit, offset = clampLimitOffset(limit, offset, len(out))
	return paginate(out, limit, offset), nil
}

// ToMetrics adds derived KPIs to report rows.
func ToMetrics(rows []models.ReportRow) []models.Metrics {
	out := make([]models.Metrics, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Metrics{
			Date:        export.FormatDate(r),
			Channel:     r.Channel,
			Spend:       round2(r.Spend),
			Clicks:      r.Clicks,
			EmailsSent:  r.EmailsSent,
			Impressions: r.Impressions,
			Revenue:     round2(r.Revenue),
			Conversions: r.Conversions,
			CPC:         round3(safeDiv(r.Spend, r.Clicks)),
			CPA:         round2(safeDiv(r.Spend, r.Conversions)),
			ROAS:        round2(safeDiv(r.Revenue, r.Spend)),
		})
	}
	return out
}

func parseBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
func round3(f float64) float64 { return math.Round(f*1000) / 1000 }
