package status

import "slices"

// DefaultPaidStatuses son los estados que el sistema base considera pagados.
var DefaultPaidStatuses = []string{Processing, Completed}

// DefaultReportStatuses son los estados que entran en los reportes.
var DefaultReportStatuses = []string{Completed, Processing, OnHold}

// PaidStatuses agrega "delivered" al conjunto de estados pagados.
func PaidStatuses(in []string) []string {
	out := slices.Clone(in)
	if !slices.Contains(out, Delivered) {
		out = append(out, Delivered)
	}
	return out
}

// ReportStatuses agrega "delivered" a los estados de reporte.
// Con una entrada vacía no hace nada.
func ReportStatuses(in []string) []string {
	if len(in) == 0 {
		return in
	}
	out := slices.Clone(in)
	if !slices.Contains(out, Delivered) {
		out = append(out, Delivered)
	}
	return out
}

// IsPaid indica si s está dentro de paid.
func IsPaid(paid []string, s string) bool {
	return slices.Contains(paid, NormalizeStatus(s))
}
