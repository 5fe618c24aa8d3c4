package imageio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/LdDl/facetrack-go/condensation"
	"github.com/pkg/errors"
)

// CSVSink writes one line per frame: frame;x;y;width;height.
// Frames without detection have empty position fields.
type CSVSink struct {
	closer io.Closer
	writer *csv.Writer
}

// NewCSVSinkFile creates the file and writes the header
func NewCSVSinkFile(filename string) (*CSVSink, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "can't create %s", filename)
	}
	sink, err := NewCSVSink(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	sink.closer = file
	return sink, nil
}

// NewCSVSink writes the header to w
func NewCSVSink(w io.Writer) (*CSVSink, error) {
	writer := csv.NewWriter(w)
	writer.Comma = ';'
	err := writer.Write([]string{"frame", "x", "y", "width", "height"})
	if err != nil {
		return nil, errors.Wrap(err, "can't write header")
	}
	return &CSVSink{
		writer: writer,
	}, nil
}

// Add writes the result of a frame
func (sink *CSVSink) Add(frame string, rect condensation.Rectangle, found bool) error {
	record := []string{frame, "", "", "", ""}
	if found {
		record[1] = fmt.Sprintf("%f", rect.X)
		record[2] = fmt.Sprintf("%f", rect.Y)
		record[3] = fmt.Sprintf("%f", rect.Width)
		record[4] = fmt.Sprintf("%f", rect.Height)
	}
	if err := sink.writer.Write(record); err != nil {
		return errors.Wrapf(err, "can't write frame %s", frame)
	}
	return nil
}

// Close flushes pending records and closes the underlying file if the sink owns one.
// Closing twice is allowed.
func (sink *CSVSink) Close() error {
	sink.writer.Flush()
	if err := sink.writer.Error(); err != nil {
		return errors.Wrap(err, "can't flush")
	}
	if sink.closer != nil {
		closer := sink.closer
		sink.closer = nil
		return closer.Close()
	}
	return nil
}
