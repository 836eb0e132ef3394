package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dropDatabas3/p1person/internal/attributes"
)

const separatorWidth = 70

// renderSummary imprime el reporte columnar de una corrida, como lo hacía
// siempre la herramienta: NAME/STATUS/RESULT más contadores al final.
func renderSummary(w io.Writer, friendlyName string, s *attributes.Summary) {
	sep := strings.Repeat("=", separatorWidth)

	title := titleFor(s.Mode)
	if s.DryRun {
		title += " (DRY RUN)"
	}

	fmt.Fprintf(w, "\n%s\n%s - %s\n%s\n\n", sep, title, friendlyName, sep)

	if len(s.Results) == 0 {
		fmt.Fprintln(w, "No hay atributos para procesar.")
		return
	}

	if s.Mode == attributes.ModeDisplay {
		renderDisplayRows(w, s)
	} else {
		renderOperationRows(w, s)
	}

	fmt.Fprintf(w, "\n%s\n", sep)
	renderCounters(w, s)
	fmt.Fprintf(w, "%s\n\n", sep)
}

func titleFor(mode attributes.Mode) string {
	switch mode {
	case attributes.ModeCreate:
		return "CREACIÓN DE ATRIBUTOS"
	case attributes.ModeDisplay:
		return "ATRIBUTOS EN PINGONE"
	case attributes.ModeClear:
		return "LIMPIEZA DE ATRIBUTOS"
	case attributes.ModeRemove:
		return "BORRADO DE ATRIBUTOS"
	default:
		return strings.ToUpper(string(mode))
	}
}

func renderOperationRows(w io.Writer, s *attributes.Summary) {
	fmt.Fprintf(w, "%-25s %-18s %-30s\n", "NAME", "STATUS", "RESULT")
	fmt.Fprintf(w, "%s %s %s\n", strings.Repeat("-", 25), strings.Repeat("-", 18), strings.Repeat("-", 30))
	for _, r := range s.Results {
		fmt.Fprintf(w, "%-25s %-18s %-30s\n",
			clip(r.RemoteName, 25),
			statusLabel(r, s.DryRun),
			clip(r.Detail, 30),
		)
	}
}

func renderDisplayRows(w io.Writer, s *attributes.Summary) {
	fmt.Fprintf(w, "%-25s %-10s %-10s %-30s\n", "NAME", "TYPE", "STATUS", "DESCRIPTION")
	fmt.Fprintf(w, "%s %s %s %s\n", strings.Repeat("-", 25), strings.Repeat("-", 10), strings.Repeat("-", 10), strings.Repeat("-", 30))
	for _, r := range s.Results {
		if r.Outcome == attributes.OutcomeNotFound {
			fmt.Fprintf(w, "%-25s %-10s %-10s %-30s\n", clip(r.RemoteName, 25), "-", "NOT FOUND", "-")
			continue
		}
		status := "Enabled"
		if r.Record != nil && !r.Record.Enabled {
			status = "Disabled"
		}
		attrType, desc := "N/A", ""
		if r.Record != nil {
			attrType = r.Record.Type
			desc = r.Record.Description
		}
		fmt.Fprintf(w, "%-25s %-10s %-10s %-30s\n", clip(r.RemoteName, 25), attrType, status, clip(desc, 30))
	}
}

// statusLabel traduce el outcome a la etiqueta de la columna STATUS.
func statusLabel(r attributes.Result, dryRun bool) string {
	if dryRun && r.Outcome != attributes.OutcomeSkipped && r.Outcome != attributes.OutcomeFailed {
		return "DRY RUN"
	}
	switch r.Outcome {
	case attributes.OutcomeCreated:
		return "CREATED"
	case attributes.OutcomeSkipped:
		return "SKIPPED"
	case attributes.OutcomeCleared:
		return "CLEARED"
	case attributes.OutcomeRemoved:
		return "REMOVED"
	case attributes.OutcomeFailed:
		return "ERROR"
	default:
		return strings.ToUpper(string(r.Outcome))
	}
}

func renderCounters(w io.Writer, s *attributes.Summary) {
	fmt.Fprintln(w, "RESUMEN:")
	switch s.Mode {
	case attributes.ModeCreate:
		fmt.Fprintf(w, "  Creados:  %d\n", s.Count(attributes.OutcomeCreated))
		fmt.Fprintf(w, "  Saltados: %d\n", s.Count(attributes.OutcomeSkipped))
	case attributes.ModeDisplay:
		fmt.Fprintf(w, "  Encontrados: %d\n", s.Count(attributes.OutcomeFound))
		fmt.Fprintf(w, "  Ausentes:    %d\n", s.Count(attributes.OutcomeNotFound))
	case attributes.ModeClear:
		fmt.Fprintf(w, "  Limpiados: %d\n", s.Count(attributes.OutcomeCleared))
		fmt.Fprintf(w, "  Saltados:  %d\n", s.Count(attributes.OutcomeSkipped))
	case attributes.ModeRemove:
		fmt.Fprintf(w, "  Borrados: %d\n", s.Count(attributes.OutcomeRemoved))
		fmt.Fprintf(w, "  Saltados: %d\n", s.Count(attributes.OutcomeSkipped))
	}
	if n := s.Count(attributes.OutcomeFailed); n > 0 {
		fmt.Fprintf(w, "  Errores:  %d\n", n)
	}
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-2] + ".."
}
