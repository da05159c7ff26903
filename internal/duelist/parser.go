package duelist

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rotorops/fleetmx/internal/normalize"
	"go.uber.org/zap"
)

// Fixed-position column indices in the maintenance export.
const (
	colReg          = 0
	colAirframeRpt  = 2
	colAirframeHrs  = 3
	colATA          = 5
	colItemType     = 11
	colDisposition  = 13
	colDesc         = 15
	colRemDays      = 50
	colRemHrs       = 54
	colStatus       = 63
	minColumns      = colStatus + 1
	dedupNamePrefix = 40
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Parser parses maintenance-tracking exports into per-aircraft facts.
// Pattern tables, keyword lists, and windows are injected so tests can run
// against synthetic configurations.
type Parser struct {
	buckets     []float64
	patterns    map[float64][]*regexp.Regexp
	keywords    []string
	windowHours float64
	windowDays  float64
	logger      *zap.SugaredLogger
}

// BucketPatterns maps an interval bucket to its ATA/task-code patterns.
type BucketPatterns struct {
	Hours    float64
	Patterns []string
}

// NewParser compiles the bucket pattern table. Pattern strings are treated
// as case-insensitive regular expressions matched anywhere in the ATA text.
func NewParser(buckets []BucketPatterns, keywords []string, windowHours, windowDays float64, logger *zap.SugaredLogger) (*Parser, error) {
	p := &Parser{
		patterns:    make(map[float64][]*regexp.Regexp, len(buckets)),
		keywords:    keywords,
		windowHours: windowHours,
		windowDays:  windowDays,
		logger:      logger,
	}
	for _, b := range buckets {
		p.buckets = append(p.buckets, b.Hours)
		for _, pat := range b.Patterns {
			rx, err := regexp.Compile("(?i)" + pat)
			if err != nil {
				return nil, fmt.Errorf("compiling pattern %q for %v-hour bucket: %w", pat, b.Hours, err)
			}
			p.patterns[b.Hours] = append(p.patterns[b.Hours], rx)
		}
	}
	return p, nil
}

// BucketKey formats an interval bucket the way it is keyed in snapshots.
func BucketKey(hours float64) string {
	return strconv.FormatFloat(hours, 'f', 2, 64)
}

// ParseFile reads and classifies one export file. A structurally empty file
// (no rows, or a header with no data rows) is a hard failure; individual
// malformed rows are skipped and counted.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading export %s: %w", path, err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing export %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("export %s is empty or missing data rows", path)
	}

	res := p.parseRows(rows[1:])
	if res.RowsSkipped > 0 && p.logger != nil {
		p.logger.Debugf("export %s: skipped %d of %d rows (short or unregistered)", path, res.RowsSkipped, res.RowsTotal)
	}
	return res, nil
}

func (p *Parser) parseRows(rows [][]string) *ParseResult {
	res := &ParseResult{
		Meta:        make(map[string]AircraftMeta),
		Inspections: make(map[string]map[string]IntervalFact),
		Components:  make(map[string][]Component),
	}

	for _, row := range rows {
		res.RowsTotal++
		if len(row) < minColumns {
			res.RowsSkipped++
			continue
		}

		tail := normalize.TailKey(row[colReg])
		if tail == "" {
			res.RowsSkipped++
			continue
		}

		// The export repeats the header-level airframe facts on every row;
		// only the first row for a tail records them.
		if _, seen := res.Meta[tail]; !seen {
			meta := AircraftMeta{
				AirframeHours: normalize.ParseNumber(row[colAirframeHrs]),
				ReportDate:    normalize.ParseDate(row[colAirframeRpt]),
			}
			res.Meta[tail] = meta
			if res.ReportDate == nil && meta.ReportDate != nil {
				res.ReportDate = meta.ReportDate
			}
		}

		ataText := strings.TrimSpace(row[colATA])
		itemType := strings.ToUpper(strings.TrimSpace(row[colItemType]))
		desc := strings.TrimSpace(row[colDesc])
		remHrs := normalize.ParseNumber(row[colRemHrs])
		remDays := normalize.ParseNumber(row[colRemDays])
		status := strings.TrimSpace(row[colStatus])

		if itemType == "INSPECTION" {
			p.matchInspection(res, tail, ataText, remHrs, remDays, status, desc)
		}

		isPart := itemType == "PART"
		isRetirementInsp := itemType == "INSPECTION" && normalize.ContainsKeyword(desc, p.keywords)
		if isPart || isRetirementInsp {
			p.collectComponent(res, tail, row, desc, remHrs, remDays, status)
		}
	}

	for tail := range res.Components {
		res.Components[tail] = dedupeComponents(res.Components[tail])
	}

	return res
}

// matchInspection tests the row's ATA text against every bucket's pattern
// set. Several rows can describe the same recurring inspection at different
// due points; the most imminent hours-remaining wins per bucket.
func (p *Parser) matchInspection(res *ParseResult, tail, ataText string, remHrs, remDays *float64, status, desc string) {
	for _, bucket := range p.buckets {
		matched := false
		for _, rx := range p.patterns[bucket] {
			if rx.MatchString(ataText) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		if res.Inspections[tail] == nil {
			res.Inspections[tail] = make(map[string]IntervalFact)
		}

		key := BucketKey(bucket)
		existing, exists := res.Inspections[tail][key]
		if exists && (remHrs == nil || (existing.RemainingHours != nil && *remHrs >= *existing.RemainingHours)) {
			continue
		}

		res.Inspections[tail][key] = IntervalFact{
			RemainingHours: remHrs,
			RemainingDays:  remDays,
			Status:         status,
			Description:    desc,
		}
	}
}

// collectComponent applies the due-window filter and normalizes the item
// for the component panel.
func (p *Parser) collectComponent(res *ParseResult, tail string, row []string, desc string, remHrs, remDays *float64, status string) {
	hrsInWindow := remHrs != nil && *remHrs <= p.windowHours
	daysInWindow := remHrs == nil && remDays != nil && *remDays <= p.windowDays
	pastDue := strings.EqualFold(strings.TrimSpace(status), "PAST DUE")

	if !hrsInWindow && !daysInWindow && !pastDue {
		return
	}

	disposition := strings.ToUpper(row[colDisposition])
	rii := strings.Contains(disposition, "RII") || strings.Contains(strings.ToUpper(desc), "RII")

	var sortKey float64
	switch {
	case remHrs != nil:
		sortKey = *remHrs
	case remDays != nil:
		sortKey = *remDays * 0.5
	default:
		sortKey = undatedSortKey
	}

	res.Components[tail] = append(res.Components[tail], Component{
		Name:           normalize.CleanItemName(desc),
		RemainingHours: remHrs,
		RemainingDays:  remDays,
		Status:         status,
		RII:            rii,
		SortKey:        sortKey,
	})
}

// dedupeComponents sorts ascending by sort key and keeps the first
// occurrence per normalized-name prefix.
func dedupeComponents(comps []Component) []Component {
	sort.SliceStable(comps, func(i, j int) bool {
		return comps[i].SortKey < comps[j].SortKey
	})

	seen := make(map[string]bool, len(comps))
	deduped := comps[:0]
	for _, c := range comps {
		key := c.Name
		if len(key) > dedupNamePrefix {
			key = key[:dedupNamePrefix]
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, c)
	}
	return deduped
}
