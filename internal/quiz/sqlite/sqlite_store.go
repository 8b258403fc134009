package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"csv-quiz/internal/quiz"
)

const defaultTable = "questions"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Source reads questions from a SQLite database. The table holds one row per question with
// the columns question_text, option1..option4, correct_answer and group_name, read in rowid
// order. The database is opened read-only.
type Source struct {
	Path  string
	Table string
}

func (s Source) ReadRecords(ctx context.Context) ([]quiz.RawRecord, error) {
	table := strings.TrimSpace(s.Table)
	if table == "" {
		table = defaultTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: invalid table name %q", quiz.ErrRead, table)
	}

	db, err := sql.Open("sqlite3", readOnlyDSN(s.Path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", quiz.ErrRead, err)
	}
	defer db.Close()

	db.SetMaxOpenConns(1)

	rows, err := db.QueryContext(
		ctx,
		`SELECT question_text, option1, option2, option3, option4, correct_answer, group_name
		 FROM `+table+`
		 ORDER BY rowid ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", quiz.ErrRead, err)
	}
	defer rows.Close()

	var records []quiz.RawRecord
	for rows.Next() {
		var columns [7]sql.NullString
		if err := rows.Scan(
			&columns[0],
			&columns[1],
			&columns[2],
			&columns[3],
			&columns[4],
			&columns[5],
			&columns[6],
		); err != nil {
			return nil, fmt.Errorf("%w: %w", quiz.ErrRead, err)
		}

		// NULL columns become missing fields, the same as a short CSV row.
		record := make(quiz.RawRecord, len(quiz.Header))
		for idx, column := range columns {
			if column.Valid {
				record[quiz.Header[idx]] = column.String
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", quiz.ErrRead, err)
	}

	return records, nil
}

func readOnlyDSN(path string) string {
	return "file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=ro&_busy_timeout=5000"
}
