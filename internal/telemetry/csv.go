package telemetry

import (
	"fmt"
	"io"
	"time"
)

const CsvHeader = "time_ms,setpoint_rpm,measured_rpm,duty"

// CsvSink writes one line per record, with the time relative to the first record
type CsvSink struct {
	out         io.Writer
	start       time.Time
	wroteHeader bool
}

func NewCsvSink(out io.Writer) *CsvSink {
	return &CsvSink{out: out}
}

func (c *CsvSink) Emit(record Record) error {
	if !c.wroteHeader {
		if _, err := fmt.Fprintln(c.out, CsvHeader); err != nil {
			return err
		}
		c.wroteHeader = true
		c.start = record.Timestamp
	}
	_, err := fmt.Fprintln(c.out, FormatCsvLine(record, c.start))
	return err
}

// FormatCsvLine formats a single record, relative to the given start time
func FormatCsvLine(record Record, start time.Time) string {
	return fmt.Sprintf("%d,%.2f,%.2f,%.4f",
		record.Timestamp.Sub(start).Milliseconds(),
		record.Setpoint,
		record.Measured,
		record.Command,
	)
}

// WriteCsv writes all given records including the header
func WriteCsv(out io.Writer, records []Record) error {
	sink := NewCsvSink(out)
	for _, record := range records {
		if err := sink.Emit(record); err != nil {
			return err
		}
	}
	return nil
}
