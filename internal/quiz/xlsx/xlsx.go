package xlsx

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"csv-quiz/internal/quiz"
)

// Source reads questions from a workbook. Rows use the same seven columns as CSV files and
// there is no header row. Sheet defaults to the first sheet of the workbook.
type Source struct {
	Path  string
	Sheet string
}

func (s Source) ReadRecords(_ context.Context) ([]quiz.RawRecord, error) {
	file, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", quiz.ErrRead, err)
	}
	defer file.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheets := file.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		sheet = sheets[0]
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", quiz.ErrRead, err)
	}

	records := make([]quiz.RawRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		records = append(records, quiz.NewRawRecord(row))
	}
	return records, nil
}
