// Package output renders stockcore results to a writer in text or JSON form.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/openmfg/stockcore/pkg/application/services/bom"
	"github.com/openmfg/stockcore/pkg/application/services/serials"
	"github.com/openmfg/stockcore/pkg/domain/entities"
)

// Format selects a rendering style.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unsupported output format: %s", s)
	}
}

// Forecast renders a merged schedule.
func Forecast(w io.Writer, entries []entities.ScheduleEntry, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, entries)
	}

	fmt.Fprintf(w, "Schedule (%d entries)\n\n", len(entries))
	fmt.Fprintf(w, "%-12s %12s %12s %-38s %s\n", "Date", "Quantity", "Speculative", "Title", "Reference")
	for _, e := range entries {
		fmt.Fprintf(w, "%-12s %12s %12s %-38s %s\n",
			formatDate(e.Date),
			e.Quantity.String(),
			e.SpeculativeQuantity.String(),
			e.Title,
			e.Label)
	}
	return nil
}

// Requirements renders a part requirements summary.
func Requirements(w io.Writer, summary *entities.RequirementsSummary, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, summary)
	}

	fmt.Fprintf(w, "Requirements for part %d\n\n", summary.PartID)
	fmt.Fprintf(w, "  Available stock:          %s\n", summary.AvailableStock)
	fmt.Fprintf(w, "  On order:                 %s\n", summary.OnOrder)
	fmt.Fprintf(w, "  Required for builds:      %s\n", summary.RequiredBuildQuantity)
	fmt.Fprintf(w, "  Allocated to builds:      %s\n", summary.AllocatedBuildQuantity)
	fmt.Fprintf(w, "  Required for sales:       %s\n", summary.RequiredSalesQuantity)
	fmt.Fprintf(w, "  Allocated to sales:       %s\n", summary.AllocatedSalesQuantity)
	fmt.Fprintf(w, "  Total required:           %s\n", summary.Required)
	fmt.Fprintf(w, "  Total allocated:          %s\n", summary.Allocated)
	return nil
}

// EffectiveBom renders resolved BOM lines.
func EffectiveBom(w io.Writer, assemblyID int64, lines []bom.ResolvedLine, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, lines)
	}

	fmt.Fprintf(w, "Effective BOM for assembly %d (%d lines)\n\n", assemblyID, len(lines))
	fmt.Fprintf(w, "%-10s %-10s %12s %-12s %-10s %s\n", "Sub Part", "Reference", "Quantity", "Inherited", "Variants", "Substitutes")
	for _, line := range lines {
		inherited := "-"
		if line.InheritedFrom != nil {
			inherited = fmt.Sprintf("from %d", *line.InheritedFrom)
		}
		fmt.Fprintf(w, "%-10d %-10s %12s %-12s %-10d %d\n",
			line.Item.SubPartID,
			line.Item.Reference,
			line.Item.Quantity.String(),
			inherited,
			len(line.Variants),
			len(line.Substitutes))
	}
	return nil
}

// Validation renders a BOM validation state.
func Validation(w io.Writer, result *entities.BomValidationResult, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, result)
	}

	state := "STALE"
	if result.Valid {
		state = "VALID"
	}
	fmt.Fprintf(w, "Assembly %d: %s (checksum %s)\n", result.AssemblyPartID, state, result.Checksum)
	return nil
}

// UsedIn renders the BOM rows that consume a part.
func UsedIn(w io.Writer, partID int64, items []*entities.BomItem, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, items)
	}

	fmt.Fprintf(w, "Part %d is used in %d BOM rows\n\n", partID, len(items))
	fmt.Fprintf(w, "%-10s %-10s %12s %-10s\n", "Assembly", "Sub Part", "Quantity", "Inherited")
	for _, item := range items {
		fmt.Fprintf(w, "%-10d %-10d %12s %-10v\n",
			item.AssemblyPartID, item.SubPartID, item.Quantity.String(), item.Inherited)
	}
	return nil
}

// SerialInfo renders the latest/next serial summary for a part family.
func SerialInfo(w io.Writer, partID int64, info *serials.Info, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, info)
	}

	fmt.Fprintf(w, "Serials for part %d\n", partID)
	fmt.Fprintf(w, "  Latest: %s\n", orDash(info.Latest))
	fmt.Fprintf(w, "  Next:   %s\n", orDash(info.Next))
	return nil
}

// SerialChecks renders per-serial validation results.
func SerialChecks(w io.Writer, checks []serials.Check, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, checks)
	}

	fmt.Fprintf(w, "%-20s %-6s %s\n", "Serial", "OK", "Reason")
	for _, c := range checks {
		fmt.Fprintf(w, "%-20s %-6v %s\n", c.Serial, c.OK, c.Reason)
	}
	return nil
}

// StockItems renders stock item rows, used after serialization.
func StockItems(w io.Writer, items []*entities.StockItem, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, items)
	}

	fmt.Fprintf(w, "%-8s %-8s %12s %-20s %s\n", "ID", "Part", "Quantity", "Serial", "Batch")
	for _, item := range items {
		fmt.Fprintf(w, "%-8d %-8d %12s %-20s %s\n",
			item.ID, item.PartID, item.Quantity.String(), item.Serial, item.Batch)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
