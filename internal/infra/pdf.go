package infra

// pdf.go: sale ticket rendered with go-pdf/fpdf.
// Receipt-sized page with the store header, sale id and date, one row per
// item, the total and, for voided sales, the void reason.

import (
	"bytes"
	"fmt"

	"storevision/internal/model"

	"github.com/go-pdf/fpdf"
)

const nombreTiendaPorDefecto = "StoreVision"

// GenerarTicketPDF renders a sale as a PDF receipt and returns the bytes.
// The sale must have Items (with Producto) loaded; Sucursal is optional.
func GenerarTicketPDF(venta *model.Venta) ([]byte, error) {
	// 80mm thermal roll; height grows with the number of items
	alto := 70 + float64(len(venta.Items))*5
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: alto},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252 for the core fonts

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	tienda := nombreTiendaPorDefecto
	if venta.Sucursal != nil && venta.Sucursal.Nombre != "" {
		tienda = venta.Sucursal.Nombre
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 6, tr(tienda), "", 1, "C", false, 0, "")
	if venta.Sucursal != nil && venta.Sucursal.Direccion != nil {
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(contentW, 4, tr(*venta.Sucursal.Direccion), "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, "Venta "+venta.ID.String(), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, venta.FechaVenta.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if venta.Usuario != nil {
		pdf.CellFormat(contentW, 4, tr("Atendió: "+venta.Usuario.Nombre), "", 1, "L", false, 0, "")
	}
	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(1)

	// ── Items ─────────────────────────────────────────────────────────────────
	col1 := contentW * 0.50
	col2 := contentW * 0.15
	col3 := contentW * 0.35

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range venta.Items {
		nombre := item.ProductoID.String()[:8]
		if item.Producto != nil {
			nombre = item.Producto.Nombre
		}
		if r := []rune(nombre); len(r) > 24 {
			nombre = string(r[:23]) + "."
		}
		pdf.CellFormat(col1, 5, tr(nombre), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+item.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(1)

	// ── Total ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+venta.Total.StringFixed(2), "", 1, "R", false, 0, "")

	if venta.Estado == model.VentaAnulada {
		pdf.Ln(1)
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW, 5, "VENTA ANULADA", "", 1, "C", false, 0, "")
		if venta.MotivoAnulacion != nil {
			pdf.SetFont("Helvetica", "", 7)
			pdf.MultiCell(contentW, 4, tr(*venta.MotivoAnulacion), "", "C", false)
		}
	}

	// ── Footer ────────────────────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render ticket: %w", err)
	}
	return buf.Bytes(), nil
}
