package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"github.com/you/staysvc/domain"
)

const sheetName = "Bookings"

var headers = []string{"Booking ID", "Listing", "City", "Check-in", "Check-out", "Nights", "Guests", "Total price", "Status", "Booked at"}

// XLSXExporter implements domain.BookingExporter as an Excel workbook
type XLSXExporter struct{}

func NewXLSXExporter() *XLSXExporter { return &XLSXExporter{} }

func (XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (XLSXExporter) FileExtension() string { return "xlsx" }

// Export writes one row per booking below a styled header row
func (XLSXExporter) Export(w io.Writer, bookings []domain.BookingView) error {
	f := excelize.NewFile()
	defer f.Close()

	// rename the default sheet so the workbook holds only the bookings
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("error naming sheet: %w", err)
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("error writing header %s: %w", cell, err)
		}
	}
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, style); err != nil {
		return fmt.Errorf("error styling header: %w", err)
	}

	for r, b := range bookings {
		title, city := "(listing removed)", ""
		if b.Listing != nil {
			title, city = b.Listing.Title, b.Listing.Location.City
		}
		values := []interface{}{
			b.ID,
			title,
			city,
			b.CheckIn.Format("2006-01-02"),
			b.CheckOut.Format("2006-01-02"),
			b.Nights,
			b.Guests,
			b.TotalPrice,
			b.Status,
			b.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("error writing cell %s: %w", cell, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

var _ domain.BookingExporter = XLSXExporter{}
