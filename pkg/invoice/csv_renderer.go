package invoice

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/klokku/calinvoice/pkg/daterange"
	log "github.com/sirupsen/logrus"
)

var csvHeader = []string{"Date", "Client", "Sub Client", "Num Hours", "Job", "Rate", "Total"}

// FileName is the name the invoice for year/month is exported under.
func FileName(year int, month daterange.Month) string {
	return fmt.Sprintf("%d-%s-invoice.csv", year, month.TwoDigit())
}

func RenderCSV(lines []InvoiceLine) (string, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	if err := writer.Write(csvHeader); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	for _, line := range lines {
		if err := writer.Write(line.Record()); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

// Totals sums hours and amounts over lines.
func Totals(lines []InvoiceLine) (hours float64, total float64) {
	for _, l := range lines {
		hours += l.Hours
		total += l.Total
	}
	return hours, total
}
